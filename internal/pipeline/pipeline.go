// Package pipeline orchestrates the per-parcel resolution sequence:
// parse the seed address, resolve it against geocoded candidates, build
// the ownership ledger, classify and link owners to sales, then assemble
// and persist the per-entity records.
package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/parcelgraph/internal/address"
	"github.com/parcelgraph/internal/audit"
	"github.com/parcelgraph/internal/debug"
	"github.com/parcelgraph/internal/linker"
	"github.com/parcelgraph/internal/owner"
	"github.com/parcelgraph/internal/records"
	"github.com/parcelgraph/internal/source"
)

// Config carries every input location and tunable for a batch run.
type Config struct {
	SeedPath     string
	CandidateDir string
	DocumentDir  string
	AttributeDir string
	DataDir      string
	Workers      int
	Threshold    float64
	KeywordsPath string
	AuditPath    string
	AuditLabel   string
	Debug        bool
}

// Pipeline is a configured batch processor. Construct with New; all
// loaded inputs are read-only afterwards, so ProcessParcel is safe to
// call concurrently.
type Pipeline struct {
	cfg       Config
	seed      map[string]source.SeedRow
	matcher   *address.Matcher
	assembler *records.Assembler
	writer    records.Writer
	store     *audit.Store
}

// Result is one parcel's processing outcome. Diagnostics collect
// non-fatal oddities; only Err marks the parcel as failed.
type Result struct {
	ParcelID    string
	Method      address.Method
	Score       float64
	Owners      int
	Sales       int
	Links       int
	Diagnostics []string
	Err         error
}

// Resolved reports whether an address record was produced.
func (r Result) Resolved() bool { return r.Err == nil && r.Method != "" }

// Summary aggregates a batch run.
type Summary struct {
	Processed  int
	Resolved   int
	Unresolved int
	Failed     int
	Results    []Result
}

// New loads the batch inputs and returns a ready pipeline. Close must be
// called when done if an audit database was configured.
func New(cfg Config) (*Pipeline, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	seed, err := source.LoadSeed(cfg.SeedPath)
	if err != nil {
		return nil, err
	}
	attrs, err := source.LoadAttributes(cfg.AttributeDir)
	if err != nil {
		return nil, err
	}
	classifier, err := owner.LoadClassifier(cfg.KeywordsPath)
	if err != nil {
		return nil, err
	}

	matcher := address.NewMatcher()
	if cfg.Threshold > 0 {
		matcher.Threshold = cfg.Threshold
	}
	matcher.Debug = cfg.Debug

	p := &Pipeline{
		cfg:       cfg,
		seed:      seed,
		matcher:   matcher,
		assembler: records.NewAssembler(classifier, attrs),
		writer:    records.Writer{DataDir: cfg.DataDir},
	}
	if cfg.AuditPath != "" {
		store, err := audit.Open(cfg.AuditPath)
		if err != nil {
			return nil, err
		}
		p.store = store
	}
	return p, nil
}

// Close releases the audit database, if any.
func (p *Pipeline) Close() error {
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// Run processes every document in the configured directory with the
// configured worker count and returns the batch summary. The audit
// database, when configured, gets one run row and one decision per
// parcel.
func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	defer debug.Timing(p.cfg.Debug, "batch run")()

	parcels, err := source.ListParcels(p.cfg.DocumentDir)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(parcels))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Workers)
	for i, parcelID := range parcels {
		i, parcelID := i, parcelID
		g.Go(func() error {
			results[i] = p.ProcessParcel(ctx, parcelID)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &Summary{Results: results}
	for _, r := range results {
		summary.Processed++
		switch {
		case r.Err != nil:
			summary.Failed++
		case r.Resolved():
			summary.Resolved++
		default:
			summary.Unresolved++
		}
	}

	if p.store != nil {
		if err := p.recordRun(summary); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (p *Pipeline) recordRun(summary *Summary) error {
	runID, err := p.store.CreateRun(p.cfg.AuditLabel)
	if err != nil {
		return err
	}
	for _, r := range summary.Results {
		note := ""
		if r.Err != nil {
			note = r.Err.Error()
		} else if len(r.Diagnostics) > 0 {
			note = r.Diagnostics[0]
		}
		method := string(r.Method)
		if method == "" {
			method = "unresolved"
		}
		if err := p.store.RecordDecision(runID, r.ParcelID, method, r.Score, note); err != nil {
			return err
		}
	}
	return p.store.CompleteRun(runID, summary.Processed, summary.Resolved, summary.Unresolved+summary.Failed)
}

// ProcessParcel runs the full resolution sequence for one parcel and
// writes its entity files. Address resolution failures degrade to
// diagnostics; only I/O and malformed-input errors fail the parcel.
func (p *Pipeline) ProcessParcel(ctx context.Context, parcelID string) Result {
	res := Result{ParcelID: parcelID}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}
	defer debug.Timing(p.cfg.Debug, "parcel "+parcelID)()

	doc, err := source.LoadDocument(p.cfg.DocumentDir, parcelID)
	if err != nil {
		res.Err = err
		return res
	}

	seed, ok := p.seed[parcelID]
	if !ok {
		res.Diagnostics = append(res.Diagnostics, "no seed row")
	}

	// Address resolution. A missing candidate file or empty list leaves
	// the parcel without an address record but processing continues.
	if seed.Address != "" {
		parsed := address.Parse(seed.Address)
		candidates, err := source.LoadCandidates(p.cfg.CandidateDir, parcelID)
		if err != nil {
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("no candidates: %v", err))
		} else if match := p.matcher.Resolve(parsed, candidates); match != nil {
			debug.Parcel(p.cfg.Debug, parcelID, "matched via %s (%.3f)", match.Method, match.Score)
			addr := p.assembler.BuildAddress(seed, parsed, match)
			if err := addr.Validate(); err != nil {
				res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("address failed validation: %v", err))
			} else if err := p.writer.Write(parcelID, "address", addr); err != nil {
				res.Err = err
				return res
			} else {
				res.Method = match.Method
				res.Score = match.Score
			}
		} else {
			res.Diagnostics = append(res.Diagnostics, "empty candidate list")
		}
	} else {
		res.Diagnostics = append(res.Diagnostics, "no seed address")
	}

	if err := p.writer.Write(parcelID, "property", p.assembler.BuildProperty(parcelID, doc)); err != nil {
		res.Err = err
		return res
	}

	sales, events := p.assembler.BuildSales(parcelID, doc.Sales)
	for i, sale := range sales {
		if err := p.writer.Write(parcelID, linker.SaleSlot(events[i].Sequence), sale); err != nil {
			res.Err = err
			return res
		}
	}
	res.Sales = len(sales)

	ledger, _ := owner.BuildLedger(owner.Regions{
		CurrentOwners:    doc.CurrentOwners,
		Sales:            ownerRows(doc.Sales),
		PortabilityOwner: doc.PortabilityOwner,
		ExemptionNames:   doc.ExemptionNames,
		SaleDate:         doc.SaleDate,
	})
	entries := p.assembler.BuildOwnerEntries(ledger)
	for _, rec := range p.assembler.BuildOwnerRecords(parcelID, entries) {
		var v any = rec.Person
		if rec.Company != nil {
			v = rec.Company
		}
		if err := p.writer.Write(parcelID, rec.Slot, v); err != nil {
			res.Err = err
			return res
		}
		res.Owners++
	}

	links := linker.Correlate(entries, events)
	for name, rel := range p.assembler.BuildRelationships(links) {
		if err := p.writer.Write(parcelID, name, rel); err != nil {
			res.Err = err
			return res
		}
	}
	res.Links = len(links)

	// Tax files are named by assessment year; a year that failed to parse
	// falls back to its table position.
	for i, tax := range p.assembler.BuildTaxes(parcelID, doc.TaxYears) {
		name := fmt.Sprintf("tax_%d", i+1)
		if tax.TaxYear != nil {
			name = fmt.Sprintf("tax_%d", *tax.TaxYear)
		}
		if err := p.writer.Write(parcelID, name, tax); err != nil {
			res.Err = err
			return res
		}
	}

	if structure := p.assembler.BuildStructure(parcelID); structure != nil {
		if err := p.writer.Write(parcelID, "structure", structure); err != nil {
			res.Err = err
			return res
		}
	}
	if utility := p.assembler.BuildUtility(parcelID); utility != nil {
		if err := p.writer.Write(parcelID, "utility", utility); err != nil {
			res.Err = err
			return res
		}
	}

	lot := p.assembler.BuildLot(parcelID, doc.Lot)
	if err := p.writer.Write(parcelID, "lot", lot); err != nil {
		res.Err = err
		return res
	}

	for i, layout := range p.assembler.BuildLayouts(parcelID, doc.Rooms) {
		if err := p.writer.Write(parcelID, fmt.Sprintf("layout_%d", i+1), layout); err != nil {
			res.Err = err
			return res
		}
	}

	return res
}

func ownerRows(rows []source.SaleRow) []owner.SaleRow {
	out := make([]owner.SaleRow, len(rows))
	for i, r := range rows {
		out[i] = owner.SaleRow{Date: r.Date, Owner: r.Owner}
	}
	return out
}

// Print writes the batch result table to stdout.
func (s *Summary) Print() {
	fmt.Println("\n=== Batch Summary ===")
	fmt.Printf("Processed:  %d\n", s.Processed)
	fmt.Printf("Resolved:   %d\n", s.Resolved)
	fmt.Printf("Unresolved: %d\n", s.Unresolved)
	fmt.Printf("Failed:     %d\n", s.Failed)
	for _, r := range s.Results {
		if r.Err != nil {
			fmt.Printf("  %s: ERROR %v\n", r.ParcelID, r.Err)
			continue
		}
		method := string(r.Method)
		if method == "" {
			method = "unresolved"
		}
		fmt.Printf("  %s: %s (owners=%d sales=%d links=%d)\n",
			r.ParcelID, method, r.Owners, r.Sales, r.Links)
		for _, d := range r.Diagnostics {
			fmt.Printf("    note: %s\n", d)
		}
	}
}
