package models

// PortInfo holds the scraped details of one seaport.
type PortInfo struct {
	ISO                string `json:"iso"`
	Seaport            string `json:"seaport"`
	Lines              string `json:"lines"`
	ImportRestrictions string `json:"importRestrictions"`
	ExportRestrictions string `json:"exportRestrictions"`
	Website            string `json:"website"`
}
