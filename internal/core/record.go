package core

// Record is implemented by the four stored entities so list views can
// address them generically. Field returns a string, a decimal.Decimal, a
// Date, or a time.Time; unknown keys yield nil.
type Record interface {
	RecordID() string
	Field(key string) any
}

func (t Transaction) RecordID() string { return t.ID }
func (b Budget) RecordID() string      { return b.ID }
func (n Note) RecordID() string        { return n.ID }
func (a Asset) RecordID() string       { return a.ID }

func (t Transaction) Field(key string) any {
	switch key {
	case "date":
		return t.Date
	case "type":
		return string(t.Type)
	case "name":
		return t.Name
	case "category":
		return t.Category
	case "method":
		return t.Method
	case "amount":
		return t.Amount
	case "created_at":
		return t.CreatedAt
	}
	return nil
}

func (b Budget) Field(key string) any {
	switch key {
	case "category":
		return b.Category
	case "amount":
		return b.Amount
	case "month":
		return b.Month
	case "year":
		return b.Year
	case "created_at":
		return b.CreatedAt
	}
	return nil
}

func (n Note) Field(key string) any {
	switch key {
	case "heading":
		return n.Heading
	case "content":
		return n.Content
	case "created_at":
		return n.CreatedAt
	}
	return nil
}

func (a Asset) Field(key string) any {
	switch key {
	case "name":
		return a.Name
	case "amount":
		return a.Amount
	case "currency":
		return string(a.Currency)
	case "notes":
		return a.Notes
	case "created_at":
		return a.CreatedAt
	}
	return nil
}
