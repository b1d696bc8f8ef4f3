package ecoledirecte

import (
	"encoding/json"
	"fmt"
)

// Account type discriminators used by the login payload. The guardian type
// shows up as either the numeric code or the legacy literal depending on the
// account's vintage; both are accepted.
const (
	accountTypeStudent        = "E"
	accountTypeGuardian       = "1"
	accountTypeGuardianLegacy = "Famille"
)

// Session is the authenticated surface produced by a successful login:
// either a single learner or a guardian of one or more learners. Type-switch
// on *StudentSession / *FamilySession when the variant matters.
type Session interface {
	// Students returns every learner reachable through this session, in the
	// order the server listed them.
	Students() []*StudentSession
}

// StudentSession is a single learner account.
type StudentSession struct {
	client *Client

	ID        int
	FirstName string
	LastName  string
}

func (s *StudentSession) Students() []*StudentSession { return []*StudentSession{s} }

// FamilySession is a guardian account linked to one or more learners.
type FamilySession struct {
	client *Client

	AccountID int
	students  []*StudentSession
}

func (f *FamilySession) Students() []*StudentSession { return f.students }

type loginAccount struct {
	ID         int    `json:"id"`
	TypeCompte string `json:"typeCompte"`
	Prenom     string `json:"prenom"`
	Nom        string `json:"nom"`
	Profile    struct {
		Eleves []struct {
			ID     int    `json:"id"`
			Prenom string `json:"prenom"`
			Nom    string `json:"nom"`
		} `json:"eleves"`
	} `json:"profile"`
}

// resolveAccount turns the login payload into a Session. Only the first
// account entry decides the variant; the server places the primary account
// first, and a family payload may legally contain more than one.
func (c *Client) resolveAccount(data json.RawMessage) (Session, *Error) {
	var payload struct {
		Accounts []loginAccount `json:"accounts"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, &Error{Kind: KindMalformedResponse, Message: "decoding login payload", Err: err}
	}
	if len(payload.Accounts) == 0 {
		return nil, &Error{Kind: KindNoAccounts, Message: "login response contains no accounts"}
	}

	main := payload.Accounts[0]
	switch main.TypeCompte {
	case accountTypeStudent:
		return &StudentSession{
			client:    c,
			ID:        main.ID,
			FirstName: main.Prenom,
			LastName:  main.Nom,
		}, nil
	case accountTypeGuardian, accountTypeGuardianLegacy:
		students := make([]*StudentSession, 0, len(main.Profile.Eleves))
		for _, e := range main.Profile.Eleves {
			students = append(students, &StudentSession{
				client:    c,
				ID:        e.ID,
				FirstName: e.Prenom,
				LastName:  e.Nom,
			})
		}
		return &FamilySession{client: c, AccountID: main.ID, students: students}, nil
	default:
		return nil, &Error{
			Kind:    KindUnknownAccountType,
			Message: fmt.Sprintf("unrecognized account type %q", main.TypeCompte),
		}
	}
}
