package validation

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/goliatone/go-uischema/pkg/schema"
)

func flatDocument(ids []string, label string) schema.Document {
	doc := schema.Document{Layout: schema.Layout{Mode: schema.LayoutStack}}
	for _, id := range ids {
		doc.Components = append(doc.Components, schema.Node{
			ID:    id,
			Type:  schema.KindText,
			Props: schema.Props{"content": label},
		})
	}
	return doc
}

var idPool = []string{"a", "b", "c", "d", "root", ""}

func TestValidateIsDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	v := newValidator()

	properties.Property("validate(D) == validate(D)", prop.ForAll(
		func(picks []int, label string) bool {
			ids := make([]string, len(picks))
			for i, pick := range picks {
				ids[i] = idPool[pick]
			}
			doc := flatDocument(ids, label)
			first := v.Validate(doc)
			second := v.Validate(doc)
			return cmp.Equal(first, second)
		},
		gen.SliceOf(gen.IntRange(0, len(idPool)-1)),
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

func TestValidateAlwaysRejectsDuplicates(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	v := newValidator()

	properties.Property("a duplicated id is rejected wherever it sits", prop.ForAll(
		func(size, first, second int) bool {
			ids := make([]string, size)
			for i := range ids {
				ids[i] = fmt.Sprintf("n%d", i)
			}
			first %= size
			second %= size
			if first == second {
				second = (second + 1) % size
			}
			ids[second] = ids[first]

			doc := schema.Document{Layout: schema.Layout{Mode: schema.LayoutStack}}
			// Nest every other node to spread duplicates across depths.
			for idx, id := range ids {
				node := schema.Node{ID: id, Type: schema.KindContainer}
				if idx%2 == 1 && len(doc.Components) > 0 {
					last := &doc.Components[len(doc.Components)-1]
					last.Children = append(last.Children, node)
					continue
				}
				doc.Components = append(doc.Components, node)
			}

			result := v.Validate(doc)
			return !result.Valid && result.Errors[0].Code == CodeDuplicateID
		},
		gen.IntRange(2, 12),
		gen.IntRange(0, 100),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}
