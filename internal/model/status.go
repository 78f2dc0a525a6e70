package model

type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
	StatusFailed  Status = "failed"
	StatusExpired Status = "expired"
)

func (s Status) IsTerminal() bool {
	return s == StatusPaid || s == StatusFailed || s == StatusExpired
}

func (s Status) Valid() bool {
	return s == StatusPending || s.IsTerminal()
}

func (s Status) String() string {
	return string(s)
}
