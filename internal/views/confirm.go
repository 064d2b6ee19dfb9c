package views

// Confirm gates a destructive action on one record. The zero value is
// closed.
type Confirm struct {
	id string
}

// Ask opens the dialog for id.
func (c Confirm) Ask(id string) Confirm { return Confirm{id: id} }

func (c Confirm) Pending() (string, bool) { return c.id, c.id != "" }

func (c Confirm) Cancel() Confirm { return Confirm{} }
