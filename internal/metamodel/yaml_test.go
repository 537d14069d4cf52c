package metamodel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleMetamodelYAML = `
name: system-dynamics
traits:
  - name: Named
    attributes:
      - name: name
        type: string
types:
  - name: Stock
    structural: node
    traits: [Named]
  - name: FlowRate
    structural: node
    traits: [Named]
  - name: Flow
    structural: edge
edge_rules:
  - type: Flow
    origin:
      is_type: Stock
    outgoing_cardinality: many
    target:
      is_type: FlowRate
    incoming_cardinality: one
constraints:
  - name: rate-has-one-inflow
    match:
      is_type: FlowRate
    requirement:
      unique_neighbour:
        direction: incoming
        required: true
        predicate:
          is_type: Flow
`

func TestLoadYAML(t *testing.T) {
	mm, err := LoadYAML([]byte(sampleMetamodelYAML))
	require.NoError(t, err)
	assert.Equal(t, "system-dynamics", mm.Name)

	stock, err := mm.Type("Stock")
	require.NoError(t, err)
	assert.Equal(t, Node, stock.Structural)
	assert.True(t, stock.HasTraitName("Named"))

	flow, err := mm.Type("Flow")
	require.NoError(t, err)
	assert.Equal(t, Edge, flow.Structural)

	rules := mm.EdgeRulesFor("Flow")
	require.Len(t, rules, 1)
	assert.Equal(t, Many, rules[0].OutgoingCardinality)
	assert.Equal(t, One, rules[0].IncomingCardinality)

	constraints := mm.Constraints()
	require.Len(t, constraints, 1)
	assert.Equal(t, "rate-has-one-inflow", constraints[0].Name)
	un, ok := constraints[0].Requirement.(UniqueNeighbourRequirement)
	require.True(t, ok)
	assert.Equal(t, Incoming, un.Direction)
	assert.True(t, un.Required)
}

func TestLoadYAMLMissingName(t *testing.T) {
	_, err := LoadYAML([]byte(`types: []`))
	require.Error(t, err)
}

func TestLoadYAMLUnknownTypeReference(t *testing.T) {
	_, err := LoadYAML([]byte(`
name: broken
types:
  - name: Flow
    structural: edge
edge_rules:
  - type: Flow
    origin:
      is_type: Stock
    outgoing_cardinality: many
    incoming_cardinality: one
`))
	require.Error(t, err)
}

func TestLoadYAMLCompoundAndNegationPredicates(t *testing.T) {
	mm, err := LoadYAML([]byte(`
name: compound-test
traits:
  - name: Named
types:
  - name: Stock
    structural: node
    traits: [Named]
constraints:
  - name: named-and-not-something
    match:
      and:
        - has_trait: Named
        - not:
            is_type: Stock
    requirement:
      reject_all: {}
`))
	require.NoError(t, err)
	constraints := mm.Constraints()
	require.Len(t, constraints, 1)
	compound, ok := constraints[0].Match.(CompoundPredicate)
	require.True(t, ok)
	assert.Equal(t, And, compound.Op)
	assert.Len(t, compound.Operands, 2)
}
