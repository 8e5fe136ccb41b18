// =============================================================================
// Catalog Builder - Session Service
// =============================================================================
//
// A Session owns everything one run works on: the loaded source table, its
// resolved columns, the row builder and the output collection. Nothing here
// is global; commands create a Session, call its methods and drop it.
//
// TWO WAYS TO BUILD ROWS:
//   Lookup by code (AddByCode)
//     1. Find the contiguous block (or prefix scan) containing the code
//     2. Build the model row from the block's main row and variants
//     3. Admit it to the collection unless its code is already there
//
//   Batch by parent code (BuildBatch)
//     1. Scan the whole table once per requested parent, concurrently
//     2. Sort variants in natural order of their suffix
//     3. Build one row per parent, or a placeholder row when nothing matched
//
// CONCURRENCY:
//   The table and column maps are read-only after NewSession, so lookups and
//   batch workers share them freely. The collection serializes its own
//   mutations.
//
// =============================================================================

package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/glasscom/catalog-builder/internal/collection"
	"github.com/glasscom/catalog-builder/internal/columns"
	"github.com/glasscom/catalog-builder/internal/csvparser"
	"github.com/glasscom/catalog-builder/internal/finish"
	"github.com/glasscom/catalog-builder/internal/grouping"
	"github.com/glasscom/catalog-builder/internal/metrics"
	"github.com/glasscom/catalog-builder/internal/model"
	"github.com/glasscom/catalog-builder/internal/types"
)

// =============================================================================
// OPTIONS
// =============================================================================

// Options configures a Session. Zero fields fall back to the defaults noted.
type Options struct {
	// Candidates resolve lookup-source columns. Default: columns.DefaultCandidates().
	Candidates columns.Candidates

	// BatchRules guess batch-source columns. Default: columns.BatchRules().
	BatchRules map[columns.Role]columns.GuessRule

	// Assets are the directories used in derived paths. Default: finish.DefaultAssets().
	Assets *finish.Assets

	// MaxConcurrency bounds BuildBatch workers. Default: 4.
	MaxConcurrency int

	// IncludeMissing makes BuildBatch emit placeholder rows for codes that
	// matched nothing.
	IncludeMissing bool

	// Transformer is applied to records on export. Optional.
	Transformer *Transformer

	Logger  zerolog.Logger
	Metrics *metrics.Metrics
}

// =============================================================================
// SESSION STRUCTURE
// =============================================================================

// Session is the working state of one catalog build.
type Session struct {
	table *csvparser.Table

	// lookupColumns are resolved with the lookup candidates; batchColumns are
	// guessed from the raw export layout and stored under lookup role names.
	lookupColumns columns.Map
	batchColumns  columns.Map

	builder     *model.Builder
	collection  *collection.Collection
	transformer *Transformer
	opts        Options
	logger      zerolog.Logger
	metrics     *metrics.Metrics
}

// NewSession prepares a session over a loaded table.
func NewSession(table *csvparser.Table, opts Options) *Session {
	if opts.Candidates == nil {
		opts.Candidates = columns.DefaultCandidates()
	}
	if opts.BatchRules == nil {
		opts.BatchRules = columns.BatchRules()
	}
	assets := finish.DefaultAssets()
	if opts.Assets != nil {
		assets = *opts.Assets
	}
	if opts.MaxConcurrency < 1 {
		opts.MaxConcurrency = 4
	}

	var headers []string
	if table != nil {
		headers = table.Headers
	}

	s := &Session{
		table:         table,
		lookupColumns: columns.Resolve(headers, opts.Candidates),
		batchColumns:  batchColumns(headers, opts.BatchRules),
		builder:       model.NewBuilder(assets, opts.Logger, opts.Metrics),
		collection:    collection.New(),
		transformer:   opts.Transformer,
		opts:          opts,
		logger:        opts.Logger,
		metrics:       opts.Metrics,
	}

	s.logger.Debug().
		Interface("lookup_columns", s.lookupColumns).
		Interface("batch_columns", s.batchColumns).
		Msg("resolved source columns")

	return s
}

// batchColumns guesses the export layout and renames the roles so the model
// builder can read batch rows like lookup rows.
func batchColumns(headers []string, rules map[columns.Role]columns.GuessRule) columns.Map {
	guessed := columns.GuessAll(headers, rules)
	renamed := columns.Map{}
	for from, to := range map[columns.Role]columns.Role{
		columns.RoleCode:  columns.RoleSKU,
		columns.RoleDesc:  columns.RoleTitle,
		columns.RoleCat:   columns.RoleCat,
		columns.RoleUM:    columns.RoleUM,
		columns.RolePrice: columns.RolePrice,
	} {
		if header, ok := guessed[from]; ok {
			renamed[to] = header
		}
	}
	return renamed
}

// Collection returns the output collection.
func (s *Session) Collection() *collection.Collection {
	return s.collection
}

// =============================================================================
// LOOKUP BY CODE
// =============================================================================

// CheckLookupColumns reports whether the source can serve lookups in mode.
// Contiguous modes need sku and parent; senza_separatore only sku.
func (s *Session) CheckLookupColumns(mode types.Mode) error {
	source := ""
	if s.table != nil {
		source = s.table.SourceFile
	}
	if mode == types.ModeSenzaSeparatore {
		return columns.Require(source, s.lookupColumns, columns.RoleSKU)
	}
	return columns.Require(source, s.lookupColumns, columns.RoleSKU, columns.RoleParent)
}

// Lookup finds the group of code.
//
// RETURNS:
//   - The group.
//   - grouping.ErrNotFound when nothing matched, or a *csvparser.LoadError
//     when the source lacks the columns mode needs.
func (s *Session) Lookup(code string, mode types.Mode) (grouping.Group, error) {
	if err := s.CheckLookupColumns(mode); err != nil {
		return grouping.Group{}, err
	}

	group, err := grouping.Lookup(s.table, s.lookupColumns, code, mode)
	if errors.Is(err, grouping.ErrNotFound) && s.metrics != nil {
		s.metrics.LookupNotFound.WithLabelValues(mode.String()).Inc()
	}
	return group, err
}

// BuildRow looks up code and builds its model row without touching the
// collection.
func (s *Session) BuildRow(code string, mode types.Mode) (model.Row, model.BuildInfo, error) {
	group, err := s.Lookup(code, mode)
	if err != nil {
		return model.Row{}, model.BuildInfo{}, err
	}
	row, info := s.builder.Build(group, mode, s.lookupColumns)
	return row, info, nil
}

// AddByCode builds the row of code and adds it to the collection.
//
// RETURNS:
//   - The row and build info, also when the row was rejected.
//   - grouping.ErrNotFound, collection.ErrDuplicate or collection.ErrEmptyCode
//     (all wrapped with the code) when nothing was added.
func (s *Session) AddByCode(code string, mode types.Mode) (model.Row, model.BuildInfo, error) {
	row, info, err := s.BuildRow(code, mode)
	if err != nil {
		return row, info, fmt.Errorf("lookup %s: %w", code, err)
	}

	if err := s.collection.Add(row); err != nil {
		if errors.Is(err, collection.ErrDuplicate) && s.metrics != nil {
			s.metrics.DuplicateRejected.Inc()
		}
		return row, info, fmt.Errorf("add %s: %w", code, err)
	}

	s.logger.Info().
		Str("code", row.Code).
		Str("mode", mode.String()).
		Int("variants", len(row.Slots)).
		Msg("row added")

	return row, info, nil
}

// Restore puts previously saved rows back into the collection, skipping
// rows the collection refuses.
func (s *Session) Restore(rows []model.Row) int {
	restored := 0
	for _, row := range rows {
		if err := s.collection.Add(row); err != nil {
			s.logger.Warn().Err(err).Str("code", row.Code).Msg("skipped saved row")
			continue
		}
		restored++
	}
	return restored
}

// =============================================================================
// BATCH BUILD
// =============================================================================

// BatchItem is the outcome for one requested parent code.
type BatchItem struct {
	Request string
	Row     model.Row
	Info    model.BuildInfo

	// NotFound is true when no row matched; Row is then a placeholder.
	NotFound bool
}

// BatchResult is the outcome of BuildBatch, in request order.
type BatchResult struct {
	Items    []BatchItem
	NotFound []string
	Duration time.Duration
}

// Rows returns the rows to export: every found row, plus placeholder rows
// when they were requested.
func (r BatchResult) Rows(includeMissing bool) []model.Row {
	rows := make([]model.Row, 0, len(r.Items))
	for _, item := range r.Items {
		if item.NotFound && !includeMissing {
			continue
		}
		rows = append(rows, item.Row)
	}
	return rows
}

// BuildBatch builds one row per requested parent code. Codes are processed
// concurrently; results keep the request order. Blank codes are skipped.
//
// PARAMETERS:
//   - ctx: Cancels outstanding work.
//   - parents: The requested parent codes.
//   - mode: Selects the parser and schema.
//
// RETURNS:
//   - The result. A code that matches nothing never fails the batch.
//   - ctx.Err() if the context was cancelled.
func (s *Session) BuildBatch(ctx context.Context, parents []string, mode types.Mode) (BatchResult, error) {
	start := time.Now()

	requests := make([]string, 0, len(parents))
	for _, p := range parents {
		if p = strings.TrimSpace(p); p != "" {
			requests = append(requests, p)
		}
	}

	items := make([]BatchItem, len(requests))
	if s.table == nil {
		for i, request := range requests {
			items[i] = BatchItem{Request: request, Row: model.Ghost(strings.ToUpper(request), mode), NotFound: true}
		}
		return s.finishBatch(items, start), nil
	}

	codeOf := func(row types.Row) string { return s.batchColumns.Get(row, columns.RoleSKU) }

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.MaxConcurrency)

	for i, request := range requests {
		i, request := i, request
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			group := grouping.Scan(s.table.Rows, codeOf, request, mode)
			if len(group.Variants) == 0 {
				items[i] = BatchItem{Request: request, Row: model.Ghost(group.Code, mode), NotFound: true}
				if s.metrics != nil {
					s.metrics.LookupNotFound.WithLabelValues(mode.String()).Inc()
				}
				return nil
			}

			grouping.SortVariants(&group)
			row, info := s.builder.Build(group, mode, s.batchColumns)
			items[i] = BatchItem{Request: request, Row: row, Info: info}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return BatchResult{}, err
	}

	return s.finishBatch(items, start), nil
}

// BatchRows returns the rows of result to export, with placeholder rows
// when the session was opened with IncludeMissing.
func (s *Session) BatchRows(result BatchResult) []model.Row {
	return result.Rows(s.opts.IncludeMissing)
}

func (s *Session) finishBatch(items []BatchItem, start time.Time) BatchResult {
	result := BatchResult{Items: items, Duration: time.Since(start)}
	for _, item := range items {
		if item.NotFound {
			result.NotFound = append(result.NotFound, item.Request)
		}
	}

	s.logger.Info().
		Int("requested", len(items)).
		Int("not_found", len(result.NotFound)).
		Dur("duration", result.Duration).
		Msg("batch build complete")

	return result
}

// =============================================================================
// EXPORT
// =============================================================================

// Export writes the collection in mode's schema after applying the
// configured transformations.
func (s *Session) Export(w io.Writer, mode types.Mode) ([]string, error) {
	return ExportRows(w, s.collection.Rows(), mode, s.transformer)
}

// Records flattens rows with the session's transformations applied.
func (s *Session) Records(rows []model.Row) []types.Record {
	return Records(rows, s.transformer)
}

// ExportRows writes rows as a semicolon separated table. Dynamic schemas are
// sized to the widest row. t may be nil.
func ExportRows(w io.Writer, rows []model.Row, mode types.Mode, t *Transformer) ([]string, error) {
	records := Records(rows, t)
	keys := model.ExportKeys(mode, records)
	if err := csvparser.WriteRecords(w, keys, records); err != nil {
		return nil, fmt.Errorf("failed to write export: %w", err)
	}
	return keys, nil
}

// Records flattens rows and applies t to the result. t may be nil.
func Records(rows []model.Row, t *Transformer) []types.Record {
	records := make([]types.Record, len(rows))
	for i, row := range rows {
		records[i] = row.Record()
	}
	if t != nil {
		t.ApplyAll(records)
	}
	return records
}
