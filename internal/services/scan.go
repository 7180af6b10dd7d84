package services

import (
	"fmt"
	"log"

	clamd "github.com/dutchcoders/go-clamd"
)

// ClamScanner checks uploaded templates against ClamAV before they are
// rendered. An unreachable daemon is logged and ignored — scanning is a
// safety net, not a gate on availability — but a positive detection
// rejects the template.
type ClamScanner struct {
	URL string
}

func (s *ClamScanner) Scan(path string) error {
	c := clamd.NewClamd(s.URL)
	response, err := c.ScanFile(path)
	if err != nil {
		log.Println("[SCAN] ClamAV unavailable, skipping template scan:", err)
		return nil
	}

	for res := range response {
		if res.Status == clamd.RES_FOUND {
			log.Printf("[SCAN] threat detected in uploaded template: %s", res.Description)
			return fmt.Errorf("threat detected: %s", res.Description)
		}
	}
	return nil
}
