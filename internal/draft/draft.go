// Package draft keeps the recipes being written: free-text ingredient
// rows, step texts and the allocation ledger between them.
package draft

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/culinario/backend/internal/app"
	"github.com/culinario/backend/internal/apperrors"
	"github.com/culinario/backend/internal/assembler"
	"github.com/culinario/backend/internal/catalog"
	"github.com/culinario/backend/internal/ledger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrSaveInProgress is returned when a draft is saved while its previous
// save has not finished.
var ErrSaveInProgress = errors.New("save already in progress")

// Fields are the scalar recipe fields of a draft.
type Fields struct {
	Name         string  `json:"name"`
	Image        *string `json:"image"`
	Category     string  `json:"category"`
	OvenSettings string  `json:"ovensettings"`
	Source       string  `json:"source"`
	Servings     int     `json:"servings"`
}

// FieldsPatch updates Fields; nil members are left alone.
type FieldsPatch struct {
	Name         *string `json:"name"`
	Image        *string `json:"image"`
	Category     *string `json:"category"`
	OvenSettings *string `json:"ovensettings"`
	Source       *string `json:"source"`
	Servings     *int    `json:"servings"`
}

// StepView is a step as shown to the author.
type StepView struct {
	Number      int                 `json:"stepNumber"`
	Text        string              `json:"text"`
	Ingredients []ledger.Allocation `json:"ingredients"`
}

// View is a snapshot of a draft.
type View struct {
	ID        uuid.UUID       `json:"id"`
	Fields
	Rows      []assembler.Row `json:"rows"`
	Steps     []StepView      `json:"steps"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// Draft is one authoring session. All methods are safe for concurrent
// use; steps are numbered from 1 and rows indexed from 0.
type Draft struct {
	id    uuid.UUID
	state *app.State

	mu      sync.Mutex
	fields  Fields
	rows    []assembler.Row
	steps   []assembler.StepInput
	ledger  *ledger.Ledger
	saving  bool
	updated time.Time
	now     func() time.Time
}

func newDraft(state *app.State, now func() time.Time) *Draft {
	return &Draft{
		id:      uuid.New(),
		state:   state,
		fields:  Fields{Servings: state.DefaultServings},
		ledger:  ledger.New(nil, 0, ledger.WithPolicy(state.AllocationPolicy)),
		updated: now(),
		now:     now,
	}
}

func (d *Draft) ID() uuid.UUID {
	return d.id
}

// UpdatedAt is the time of the last change.
func (d *Draft) UpdatedAt() time.Time {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updated
}

// View returns a copy of the draft's state.
func (d *Draft) View() View {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.viewLocked()
}

func (d *Draft) viewLocked() View {
	allocs := d.ledger.Allocations()
	steps := make([]StepView, len(d.steps))
	for i, s := range d.steps {
		steps[i] = StepView{Number: i + 1, Text: s.Text, Ingredients: allocs[i]}
		if steps[i].Ingredients == nil {
			steps[i].Ingredients = []ledger.Allocation{}
		}
	}
	rows := make([]assembler.Row, len(d.rows))
	copy(rows, d.rows)

	return View{
		ID:        d.id,
		Fields:    d.fields,
		Rows:      rows,
		Steps:     steps,
		UpdatedAt: d.updated,
	}
}

// SetFields applies patch.
func (d *Draft) SetFields(patch FieldsPatch) (View, error) {
	if patch.Servings != nil && *patch.Servings < 1 {
		return View{}, apperrors.NewBadRequest("servings must be at least 1")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if patch.Name != nil {
		d.fields.Name = *patch.Name
	}
	if patch.Image != nil {
		if *patch.Image == "" {
			d.fields.Image = nil
		} else {
			img := *patch.Image
			d.fields.Image = &img
		}
	}
	if patch.Category != nil {
		d.fields.Category = *patch.Category
	}
	if patch.OvenSettings != nil {
		d.fields.OvenSettings = *patch.OvenSettings
	}
	if patch.Source != nil {
		d.fields.Source = *patch.Source
	}
	if patch.Servings != nil {
		d.fields.Servings = *patch.Servings
	}
	d.touch()
	return d.viewLocked(), nil
}

// AddRow resolves input and appends it as an ingredient row.
func (d *Draft) AddRow(ctx context.Context, input string) (assembler.Row, error) {
	row, err := d.resolve(ctx, input)
	if err != nil {
		return assembler.Row{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.rows = append(d.rows, row)
	d.syncLedger()
	return row, nil
}

// UpdateRow resolves input again and replaces row i.
func (d *Draft) UpdateRow(ctx context.Context, i int, input string) (assembler.Row, error) {
	if err := d.checkRow(i); err != nil {
		return assembler.Row{}, err
	}
	row, err := d.resolve(ctx, input)
	if err != nil {
		return assembler.Row{}, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if i >= len(d.rows) {
		return assembler.Row{}, apperrors.NewNotFound("ingredient row", fmt.Sprint(i))
	}
	d.rows[i] = row
	d.syncLedger()
	return row, nil
}

// RemoveRow drops row i. Step allocations of the ingredient stay until
// the author changes them; Save reports them if they no longer fit.
func (d *Draft) RemoveRow(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.rows) {
		return apperrors.NewNotFound("ingredient row", fmt.Sprint(i))
	}
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
	d.syncLedger()
	return nil
}

// AddStep appends a step and returns its number.
func (d *Draft) AddStep(text string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.steps = append(d.steps, assembler.StepInput{Text: text})
	d.ledger.AddStep()
	d.touch()
	return len(d.steps)
}

func (d *Draft) UpdateStep(n int, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if n < 1 || n > len(d.steps) {
		return apperrors.NewNotFound("step", fmt.Sprint(n))
	}
	d.steps[n-1].Text = text
	d.touch()
	return nil
}

// RemoveStep drops step n with its allocation; later steps move up.
func (d *Draft) RemoveStep(n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ledger.RemoveStep(n - 1); err != nil {
		return stepError(n, err)
	}
	d.steps = append(d.steps[:n-1], d.steps[n:]...)
	d.touch()
	return nil
}

// Available lists what step n may still use.
func (d *Draft) Available(n int) ([]ledger.Available, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	avail, err := d.ledger.AvailableFor(n - 1)
	if err != nil {
		return nil, stepError(n, err)
	}
	return avail, nil
}

// SetStepIngredients replaces the allocation of step n.
func (d *Draft) SetStepIngredients(n int, allocs []ledger.Allocation) ([]ledger.Allocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.ledger.SetAllocation(n-1, allocs); err != nil {
		if errors.Is(err, ledger.ErrOverAllocated) {
			d.state.Metrics.AllocationRejected()
		}
		return nil, stepError(n, err)
	}
	d.touch()
	got, _ := d.ledger.Allocation(n - 1)
	return got, nil
}

// Nudge moves one allocated amount of step n by delta.
func (d *Draft) Nudge(n int, name string, delta float64) (ledger.Allocation, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	a, err := d.ledger.Nudge(n-1, name, delta)
	if err != nil {
		return ledger.Allocation{}, stepError(n, err)
	}
	d.touch()
	return a, nil
}

// Save assembles the draft and writes it to the recipe store. A local
// image path is uploaded first, or dropped when there is no image
// storage. On failure the draft is left unchanged so the author can retry.
func (d *Draft) Save(ctx context.Context) (uuid.UUID, error) {
	d.mu.Lock()
	if d.saving {
		d.mu.Unlock()
		return uuid.Nil, apperrors.NewConflict("Recipe is already being saved").WithCause(ErrSaveInProgress)
	}
	d.saving = true
	in := assembler.Input{
		Name:         d.fields.Name,
		Image:        d.fields.Image,
		Category:     d.fields.Category,
		OvenSettings: d.fields.OvenSettings,
		Source:       d.fields.Source,
		Servings:     d.fields.Servings,
		Rows:         append([]assembler.Row(nil), d.rows...),
		Steps:        append([]assembler.StepInput(nil), d.steps...),
		Allocations:  d.ledger.Allocations(),
	}
	ledgerErr := d.ledger.Validate()
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.saving = false
		d.mu.Unlock()
	}()

	s := d.state
	log := s.Logger.With(zap.String("draft_id", d.id.String()))

	if in.Image != nil && isLocalPath(*in.Image) && s.Uploader == nil {
		log.Warn("image storage not configured, dropping local image", zap.String("image", *in.Image))
		in.Image = nil
	}

	recipe, err := s.Assembler.Assemble(in)
	if err == nil {
		err = ledgerErr
	}
	if err != nil {
		s.Metrics.RecipeSaved("invalid")
		log.Info("recipe draft rejected", zap.Error(err))
		return uuid.Nil, apperrors.NewValidation(err)
	}

	if recipe.Image != nil && isLocalPath(*recipe.Image) && s.Uploader != nil {
		url, err := s.Uploader.Upload(ctx, *recipe.Image)
		if err != nil {
			s.Metrics.RecipeSaved("failed")
			log.Error("image upload failed", zap.Error(err))
			return uuid.Nil, apperrors.NewPersistence("upload image", err)
		}
		recipe.Image = &url
	}

	id, err := s.Store.Create(ctx, recipe)
	if err != nil {
		if appErr, ok := apperrors.As(err); ok && appErr.Code == apperrors.CodeValidationFailed {
			s.Metrics.RecipeSaved("invalid")
			return uuid.Nil, err
		}
		s.Metrics.RecipeSaved("failed")
		log.Error("failed to save recipe", zap.Error(err))
		if _, ok := apperrors.As(err); ok {
			return uuid.Nil, err
		}
		return uuid.Nil, apperrors.NewPersistence("save recipe", err)
	}

	s.Metrics.RecipeSaved("created")
	log.Info("recipe saved", zap.String("recipe_id", id.String()), zap.String("name", recipe.Name))
	return id, nil
}

func (d *Draft) resolve(ctx context.Context, input string) (assembler.Row, error) {
	res, err := d.state.Resolver.Resolve(ctx, input)
	if errors.Is(err, catalog.ErrEmptyInput) {
		return assembler.Row{}, apperrors.NewValidation(err)
	}
	if err != nil {
		return assembler.Row{}, apperrors.NewPersistence("store placeholder ingredient", err)
	}

	switch {
	case res.Created:
		d.state.Metrics.IngredientResolved("created")
	case res.Placeholder:
		d.state.Metrics.IngredientResolved("placeholder")
	default:
		d.state.Metrics.IngredientResolved("catalog")
	}

	match := res.Ingredient
	return assembler.Row{
		Input:  res.Input,
		Amount: res.Amount,
		Name:   res.Name,
		Match:  &match,
	}, nil
}

func (d *Draft) checkRow(i int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if i < 0 || i >= len(d.rows) {
		return apperrors.NewNotFound("ingredient row", fmt.Sprint(i))
	}
	return nil
}

// syncLedger hands the resolved rows to the ledger. Callers hold mu.
func (d *Draft) syncLedger() {
	lines := make([]ledger.Line, 0, len(d.rows))
	for _, r := range d.rows {
		if !r.Resolved() {
			continue
		}
		lines = append(lines, ledger.Line{Name: r.Name, Amount: r.Amount})
	}
	d.ledger.SetIngredients(lines)
	d.touch()
}

func (d *Draft) touch() {
	d.updated = d.now()
}

func stepError(n int, err error) error {
	switch {
	case errors.Is(err, ledger.ErrStepOutOfRange):
		return apperrors.NewNotFound("step", fmt.Sprint(n))
	case errors.Is(err, ledger.ErrOverAllocated):
		return apperrors.NewOverAllocated(err)
	default:
		return apperrors.NewValidation(err)
	}
}

func isLocalPath(image string) bool {
	return image != "" && !strings.HasPrefix(image, "http://") && !strings.HasPrefix(image, "https://")
}
