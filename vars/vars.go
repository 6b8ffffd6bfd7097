package vars

import (
	"errors"
	"fmt"
	"strings"

	"github.com/byte4ever/fml/stamper"
	"github.com/byte4ever/fml/value"
)

// StampsKey is the context member holding the loaded
// workspace status stamps.
const StampsKey = "stamps"

// Sources lists where a render context comes from.
type Sources struct {
	// ContextFiles are JSON, YAML or TOML documents merged
	// in order.
	ContextFiles []string
	// StampInfoFiles are workspace status files. Their keys
	// are available as {KEY} inside Variables and under
	// StampsKey in the context.
	StampInfoFiles []string
	// Variables are NAME=VALUE assignments applied last.
	// Dotted names build nested objects.
	Variables []string
}

// Build assembles the render context described by src.
// Later sources override earlier ones: stamps, then each
// context file, then each variable.
func Build(src Sources) (*value.Object, error) {
	const errCtx = "building context"

	bu, err := NewBuilder(src.StampInfoFiles...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errCtx, err)
	}

	for _, cf := range src.ContextFiles {
		if err := bu.AddContextFile(cf); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	for _, vr := range src.Variables {
		if err := bu.Assign(vr); err != nil {
			return nil, fmt.Errorf("%s: %w", errCtx, err)
		}
	}

	return bu.Object(), nil
}

// Builder accumulates a render context.
type Builder struct {
	stamps stamper.Stamps
	obj    *value.Object
}

// NewBuilder returns a builder seeded with the stamps read
// from stampInfoFiles. Without stamp files the context
// starts empty.
func NewBuilder(stampInfoFiles ...string) (*Builder, error) {
	stamps, err := stamper.LoadStamps(stampInfoFiles...)
	if err != nil {
		return nil, err
	}

	bu := &Builder{stamps: stamps, obj: value.NewObject()}
	if len(stamps) > 0 {
		bu.obj.Set(StampsKey, stamps.Object())
	}

	return bu, nil
}

// AddContextFile merges the document at path into the
// context.
func (bu *Builder) AddContextFile(path string) error {
	doc, err := value.DecodeFile(path)
	if err != nil {
		return err
	}

	bu.obj.Merge(doc)

	return nil
}

// Assign applies a NAME=VALUE assignment. VALUE is stamped
// first, so "-variable version={STABLE_VERSION}" picks up
// the workspace status.
func (bu *Builder) Assign(assignment string) error {
	const errCtx = "assigning variable"

	name, val, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf(
			"%s: variable must be NAME=VALUE, got %s",
			errCtx, assignment,
		)
	}

	if err := validName(name); err != nil {
		return fmt.Errorf("%s: %s: %w", errCtx, assignment, err)
	}

	bu.obj.SetPath(name, value.String(bu.stamps.Stamp(val)))

	return nil
}

// Object returns the context built so far.
func (bu *Builder) Object() *value.Object {
	return bu.obj
}

func validName(name string) error {
	if name == "" {
		return errors.New("empty name")
	}

	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return fmt.Errorf("empty segment in %q", name)
		}
	}

	return nil
}
