package planner

import (
	"github.com/google/uuid"

	"github.com/backmassage/lomux/internal/naming"
	"github.com/backmassage/lomux/internal/preset"
)

// Batch holds the settings shared by every job in one run.
type Batch struct {
	OutputDir string
	Preset    preset.Preset
	Params    preset.ParameterSet
}

// Planner builds Jobs for one batch. Output paths claimed earlier in the
// same batch are never handed out twice.
type Planner struct {
	batch    Batch
	resolver *naming.CollisionResolver
	newID    func() string
}

// New returns a Planner for batch.
func New(batch Batch) *Planner {
	return &Planner{
		batch:    batch,
		resolver: naming.NewCollisionResolver(),
		newID:    uuid.NewString,
	}
}

// Plan creates the Job for input at 1-based position index of total.
// Duration is left at 0; the pipeline fills it after probing.
func (p *Planner) Plan(input string, index, total int) Job {
	out := naming.OutputPath(input, p.batch.OutputDir, p.batch.Preset)
	out = p.resolver.Resolve(input, out)

	params := p.batch.Params
	params.Extra = append([]string(nil), params.Extra...)

	return Job{
		ID:         p.newID(),
		Index:      index,
		Total:      total,
		InputPath:  input,
		OutputPath: out,
		Preset:     p.batch.Preset,
		Params:     params,
	}
}

// SetIDFunc replaces the job ID generator.
func (p *Planner) SetIDFunc(f func() string) {
	if f != nil {
		p.newID = f
	}
}
