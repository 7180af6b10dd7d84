// docgen-batch drives the generation endpoint once per recipient,
// sequentially, from a recipients file. It is the command-line
// counterpart of the web client's batch flow: per-recipient failures are
// reported inline and the run keeps going, but a session expiry stops
// the run immediately and asks for reauthentication.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/batch"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/models"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/pipeline"
	"github.com/Doc-Sharing-PeerDocs/Docgen-Service/internal/template"
	"github.com/spf13/cobra"
)

var (
	flagServer      string
	flagToken       string
	flagOfficeToken string
	flagTemplate    string
	flagRecipients  string
	flagForce       bool
)

func main() {
	root := &cobra.Command{
		Use:   "docgen-batch",
		Short: "Generate personalized documents for a list of recipients",
		RunE:  run,
	}

	root.Flags().StringVar(&flagServer, "server", "http://localhost:8080", "docgen service base URL")
	root.Flags().StringVar(&flagToken, "token", "", "session bearer token (required)")
	root.Flags().StringVar(&flagOfficeToken, "office-token", "", "delegated office-store access token (required)")
	root.Flags().StringVar(&flagTemplate, "template", "", "path to the .docx template (required)")
	root.Flags().StringVar(&flagRecipients, "recipients", "", "path to a JSON file with [{id,name,prn}, ...] (required)")
	root.Flags().BoolVar(&flagForce, "force", false, "submit even if template token validation fails")
	root.MarkFlagRequired("token")
	root.MarkFlagRequired("office-token")
	root.MarkFlagRequired("template")
	root.MarkFlagRequired("recipients")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if err := validateTemplate(flagTemplate); err != nil {
		if !flagForce {
			return err
		}
		log.Printf("continuing despite validation failure (--force): %v", err)
	}

	recipients, err := loadRecipients(flagRecipients)
	if err != nil {
		return err
	}

	gen := batch.NewHTTPGenerator(flagServer, flagToken, flagOfficeToken, flagTemplate)
	runner := batch.NewRunner(gen)
	runner.PerCallEstimate = 15 * time.Second
	runner.OnProgress = func(p batch.Progress) {
		fmt.Fprintf(os.Stderr, "[%d/%d] generating for %s (%s), ~%s remaining\n",
			p.Index+1, p.Total, p.Current.Name, p.Current.PRN, p.EstimatedRemaining.Round(time.Second))
	}

	results, runErr := runner.Run(context.Background(), recipients)
	printResults(results)

	if errors.Is(runErr, pipeline.ErrSessionExpired) {
		fmt.Fprintln(os.Stderr, "\nsession expired: sign in again, then re-run with the remaining recipients")
		os.Exit(2)
	}
	return runErr
}

func validateTemplate(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read template: %w", err)
	}
	if len(data) > template.MaxTemplateSize {
		return fmt.Errorf("template exceeds the %d MB limit", template.MaxTemplateSize>>20)
	}

	text, err := template.ExtractText(data)
	if err != nil {
		return err
	}
	result := template.ValidateText(text)
	if !result.OK {
		for _, hint := range result.Hints {
			fmt.Fprintln(os.Stderr, "template check: "+hint)
		}
		return errors.New("template is missing required placeholder tokens")
	}
	return nil
}

func loadRecipients(path string) ([]models.RecipientDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read recipients file: %w", err)
	}
	var recipients []models.RecipientDescriptor
	if err := json.Unmarshal(data, &recipients); err != nil {
		return nil, fmt.Errorf("parse recipients file: %w", err)
	}
	return recipients, nil
}

func printResults(results []batch.Result) {
	if len(results) == 0 {
		return
	}
	fmt.Println()
	successes := 0
	for _, res := range results {
		if res.Success {
			successes++
			fmt.Printf("  ok    %-25s %s\n", res.Recipient.Name, res.ArtifactURL)
		} else {
			fmt.Printf("  FAIL  %-25s %s\n", res.Recipient.Name, res.Error)
		}
	}
	fmt.Printf("\n%d of %d documents generated\n", successes, len(results))
}
