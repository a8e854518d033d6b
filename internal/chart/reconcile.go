package chart

// Patch is the difference between a container's elements and a desired scene.
type Patch struct {
	Create []Element `json:"create,omitempty"`
	Update []Element `json:"update,omitempty"`
	Remove []string  `json:"remove,omitempty"` // keys
}

// Empty reports whether applying the patch would change nothing.
func (p Patch) Empty() bool {
	return len(p.Create) == 0 && len(p.Update) == 0 && len(p.Remove) == 0
}

// Reconcile diffs existing against desired by element key: new keys are
// created, keys whose element changed are updated in place and keys no longer
// desired are removed.
func Reconcile(existing, desired []Element) Patch {
	have := make(map[string]Element, len(existing))
	for _, e := range existing {
		have[e.Key] = e
	}
	want := make(map[string]bool, len(desired))

	var p Patch
	for _, e := range desired {
		want[e.Key] = true
		old, ok := have[e.Key]
		switch {
		case !ok:
			p.Create = append(p.Create, e)
		case old != e:
			p.Update = append(p.Update, e)
		}
	}
	for _, e := range existing {
		if !want[e.Key] {
			p.Remove = append(p.Remove, e.Key)
		}
	}
	return p
}

// Container is a rendering target holding a keyed element list, the Go
// counterpart of the chart's SVG container node.
type Container struct {
	ID       string
	elements []Element
	detached bool
}

// NewContainer creates an empty, attached container.
func NewContainer(id string) *Container {
	return &Container{ID: id}
}

// Elements returns a copy of the current elements in draw order.
func (c *Container) Elements() []Element {
	out := make([]Element, len(c.elements))
	copy(out, c.elements)
	return out
}

// Len returns the number of elements.
func (c *Container) Len() int { return len(c.elements) }

// Count returns the number of elements of a kind.
func (c *Container) Count(kind Kind) int {
	n := 0
	for _, e := range c.elements {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Clear removes all elements.
func (c *Container) Clear() { c.elements = nil }

// Detach marks the container as torn down; later renders into it are skipped.
func (c *Container) Detach() { c.detached = true }

// Attached reports whether the container can still be rendered into.
func (c *Container) Attached() bool { return !c.detached }

// Apply applies a patch. Created elements are appended in patch order.
func (c *Container) Apply(p Patch) {
	if len(p.Remove) > 0 {
		drop := make(map[string]bool, len(p.Remove))
		for _, k := range p.Remove {
			drop[k] = true
		}
		kept := c.elements[:0]
		for _, e := range c.elements {
			if !drop[e.Key] {
				kept = append(kept, e)
			}
		}
		c.elements = kept
	}
	if len(p.Update) > 0 {
		idx := make(map[string]int, len(c.elements))
		for i, e := range c.elements {
			idx[e.Key] = i
		}
		for _, e := range p.Update {
			if i, ok := idx[e.Key]; ok {
				c.elements[i] = e
			}
		}
	}
	c.elements = append(c.elements, p.Create...)
}

// Mount reconciles the container against the scene and then restores the
// scene's draw order. Mounting the same scene twice is a no-op the second time.
func Mount(c *Container, scene *Scene) Patch {
	p := Reconcile(c.elements, scene.Elements)
	c.Apply(p)

	order := make(map[string]int, len(scene.Elements))
	for i, e := range scene.Elements {
		order[e.Key] = i
	}
	sorted := make([]Element, len(c.elements))
	for _, e := range c.elements {
		sorted[order[e.Key]] = e
	}
	c.elements = sorted
	return p
}
