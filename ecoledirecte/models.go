package ecoledirecte

// Thin views over the server-shaped payloads, covering the fields a consumer
// typically renders. Numeric grade values arrive as localized strings
// ("15,5") and are passed through untouched.

// Grade is one graded assignment.
type Grade struct {
	Subject    string `json:"libelleMatiere"`
	Value      string `json:"valeur"`
	OutOf      string `json:"noteSur"`
	Coef       string `json:"coef"`
	Date       string `json:"date"`
	PeriodCode string `json:"codePeriode"`
	Kind       string `json:"typeDevoir"`
}

// GradePeriod is one grading period's entry from the grades payload, with
// the averages computed server-side.
type GradePeriod struct {
	Code    string        `json:"codePeriode"`
	Name    string        `json:"periode"`
	Closed  bool          `json:"cloture"`
	Summary PeriodSummary `json:"ensembleMatieres"`
}

// PeriodSummary carries a period's overall averages, localized strings like
// the grade values.
type PeriodSummary struct {
	StudentAverage string `json:"moyenneGenerale"`
	ClassAverage   string `json:"moyenneClasse"`
}

// HomeworkItem is one assignment from the digital workbook. The due date is
// the key of the map it arrives under.
type HomeworkItem struct {
	Subject      string `json:"matiere"`
	GivenOn      string `json:"donneLe"`
	Done         bool   `json:"effectue"`
	Test         bool   `json:"interrogation"`
	SubmitOnline bool   `json:"rendreEnLigne"`
}

// ScheduleEvent is one timetable slot.
type ScheduleEvent struct {
	Subject   string `json:"matiere"`
	Teacher   string `json:"prof"`
	Start     string `json:"start_date"`
	End       string `json:"end_date"`
	Room      string `json:"salle"`
	Cancelled bool   `json:"isAnnule"`
}

// Message is one mailbox entry.
type Message struct {
	ID      int          `json:"id"`
	Subject string       `json:"subject"`
	Date    string       `json:"date"`
	Read    bool         `json:"read"`
	From    MessageParty `json:"from"`
}

// MessageParty identifies a message sender or recipient.
type MessageParty struct {
	Name string `json:"name"`
	Role string `json:"role"`
}
