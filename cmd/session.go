package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/edclient/edgo/ecoledirecte"
	"github.com/edclient/edgo/internal/config"
	"github.com/edclient/edgo/store"
)

// openStore returns the credential cache living next to the config file.
func openStore() (store.Store, error) {
	path, err := config.StorePath()
	if err != nil {
		return nil, fmt.Errorf("locating credential cache: %w", err)
	}
	return store.NewFileStore(path), nil
}

// credentials resolves username/password from flags, environment, config,
// and finally a prompt.
func credentials() (string, string, error) {
	username := flagUsername
	if username == "" {
		username = env.Username
	}
	if username == "" {
		username = cfg.Username
	}
	if username == "" {
		var err error
		username, err = prompt("Username: ")
		if err != nil {
			return "", "", err
		}
	}

	password := env.Password
	if password == "" {
		var err error
		password, err = prompt("Password: ")
		if err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

// authenticate runs the full login flow: seeded device tokens first, then
// the MFA challenge resolved from cached answers or interactively. Accepted
// answers and freshly earned device tokens are written back to the cache.
func authenticate(ctx context.Context) (*ecoledirecte.Client, ecoledirecte.Session, error) {
	username, password, err := credentials()
	if err != nil {
		return nil, nil, err
	}

	cache, err := openStore()
	if err != nil {
		return nil, nil, err
	}
	cn, cv, err := cache.DeviceTokens()
	if err != nil {
		return nil, nil, fmt.Errorf("reading credential cache: %w", err)
	}

	opts := []ecoledirecte.Option{
		ecoledirecte.WithLogger(log),
		ecoledirecte.WithDeviceTokens(cn, cv),
	}
	if u := baseURL(); u != "" {
		opts = append(opts, ecoledirecte.WithBaseURL(u))
	}
	client := ecoledirecte.NewClient(opts...)

	out, err := client.Login(ctx, username, password)
	if err != nil {
		return nil, nil, fmt.Errorf("logging in: %w", err)
	}

	if out.Challenge != nil {
		out, err = resolveChallenge(ctx, client, cache, out.Challenge)
		if err != nil {
			return nil, nil, err
		}
	}

	if tokens, ok := client.Devices(); ok {
		if err := cache.SaveDeviceTokens(tokens.CN, tokens.CV); err != nil {
			log.Warn().Err(err).Msg("could not persist device tokens")
		}
	}

	return client, out.Session, nil
}

// resolveChallenge tries every cached answer for the question before asking
// the user.
func resolveChallenge(ctx context.Context, client *ecoledirecte.Client, cache store.Store, challenge *ecoledirecte.MFAChallenge) (*ecoledirecte.LoginOutcome, error) {
	known, err := cache.Answers(challenge.Question)
	if err != nil {
		log.Warn().Err(err).Msg("could not read cached answers")
	}
	for i := len(known) - 1; i >= 0; i-- {
		out, err := client.SubmitAnswer(ctx, known[i])
		if err == nil && out.Session != nil {
			return out, nil
		}
		log.Debug().Msg("cached answer rejected")
	}

	fmt.Printf("Verification required: %s\n", challenge.Question)
	for i, choice := range challenge.Choices {
		fmt.Printf("  %d) %s\n", i+1, choice)
	}
	answer, err := prompt("Answer: ")
	if err != nil {
		return nil, err
	}

	out, err := client.SubmitAnswer(ctx, answer)
	if err != nil {
		return nil, fmt.Errorf("submitting answer: %w", err)
	}
	if out.Session == nil {
		return nil, fmt.Errorf("verification did not complete the login")
	}
	if err := cache.SaveAnswer(challenge.Question, answer); err != nil {
		log.Warn().Err(err).Msg("could not persist accepted answer")
	}
	return out, nil
}

// selectStudent picks the learner to act on: --student id when given,
// otherwise the only (or first) one.
func selectStudent(session ecoledirecte.Session) (*ecoledirecte.StudentSession, error) {
	students := session.Students()
	if len(students) == 0 {
		return nil, fmt.Errorf("no learners reachable through this account")
	}
	if flagStudent == 0 {
		return students[0], nil
	}
	for _, s := range students {
		if s.ID == flagStudent {
			return s, nil
		}
	}
	return nil, fmt.Errorf("no learner with id %d on this account", flagStudent)
}

func prompt(label string) (string, error) {
	fmt.Print(label)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
