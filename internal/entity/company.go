package entity

// CompanyRow is one row of a scraped company table keyed by column header.
type CompanyRow map[string]string

type CompanyTable []CompanyRow

func (t CompanyTable) Empty() bool {
	return len(t) == 0
}
