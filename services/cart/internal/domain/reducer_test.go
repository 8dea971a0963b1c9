package domain

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(productID string, qty int, price string, selected map[string]string) LineItem {
	return LineItem{
		ProductID:          productID,
		Name:               "Product " + productID,
		UnitPrice:          decimal.RequireFromString(price),
		CurrencyLabel:      "$",
		Quantity:           qty,
		SelectedAttributes: selected,
	}
}

func mustReduce(t *testing.T, c Cart, a Action) Cart {
	t.Helper()
	next, changed := Reduce(c, a)
	require.True(t, changed, "expected %s to change the cart", ActionName(a))
	return next
}

func assertInvariants(t *testing.T, c Cart) {
	t.Helper()
	seen := make(map[string]bool, c.Len())
	for _, li := range c.Lines() {
		assert.False(t, seen[li.Key()], "duplicate key %s", li.Key())
		seen[li.Key()] = true
		assert.GreaterOrEqual(t, li.Quantity, 1, "line %s", li.Key())
	}
}

// ============================================================================
// AddItem
// ============================================================================

func TestReduce_AddMergesEqualKeys(t *testing.T) {
	c := mustReduce(t, Cart{}, AddOne(item("P1", 2, "10", map[string]string{"Size": "M"})))
	c = mustReduce(t, c, AddOne(item("P1", 3, "10", map[string]string{"Size": "M"})))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, 5, c.Lines()[0].Quantity)
	assert.Equal(t, "P1_Size:M", c.Lines()[0].Key())
}

func TestReduce_AddDistinctSelectionsAppend(t *testing.T) {
	c := NewCart(
		item("P1", 1, "10", map[string]string{"Size": "M"}),
		item("P1", 1, "10", map[string]string{"Size": "L"}),
		item("P2", 1, "5", nil),
	)

	require.Equal(t, 3, c.Len())
	keys := []string{}
	for _, li := range c.Lines() {
		keys = append(keys, li.Key())
	}
	assert.Equal(t, []string{"P1_Size:M", "P1_Size:L", "P2_"}, keys)
}

func TestReduce_AddMergeKeepsExistingFields(t *testing.T) {
	first := item("P1", 1, "10", nil)
	second := item("P1", 1, "99", nil)
	second.Name = "renamed"

	c := NewCart(first, second)
	line := c.Lines()[0]
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, "Product P1", line.Name)
	assert.True(t, decimal.NewFromInt(10).Equal(line.UnitPrice))
}

func TestReduce_AddSaturatesQuantity(t *testing.T) {
	c := mustReduce(t, Cart{}, AddOne(item("P1", math.MaxInt, "10", nil)))
	c, _ = Reduce(c, AddOne(item("P1", 1, "10", nil)))

	require.Equal(t, 1, c.Len())
	assert.Equal(t, MaxQuantity, c.Lines()[0].Quantity)
	assertInvariants(t, c)
}

func TestReduce_AttributeMergeSaturatesQuantity(t *testing.T) {
	c := NewCart(
		item("P1", MaxQuantity, "10", map[string]string{"Size": "M"}),
		item("P1", MaxQuantity, "10", map[string]string{"Size": "L"}),
	)

	c = mustReduce(t, c, UpdateAttribute{LineKey: "P1_Size:L", Name: "Size", Value: "M"})

	require.Equal(t, 1, c.Len())
	assert.Equal(t, MaxQuantity, c.Lines()[0].Quantity)
	assertInvariants(t, c)
}

func TestReduce_AddZeroQuantityIsNoop(t *testing.T) {
	c := NewCart(item("P1", 1, "10", nil))
	next, changed := Reduce(c, AddOne(item("P2", 0, "10", nil)))
	assert.False(t, changed)
	assert.Equal(t, c, next)

	next, changed = Reduce(c, AddOne(item("P2", -4, "10", nil)))
	assert.False(t, changed)
	assert.Equal(t, 1, next.Len())
}

func TestReduce_AddRepairsNegativePrice(t *testing.T) {
	c := NewCart(item("P1", 2, "-5", nil))
	require.Equal(t, 1, c.Len())
	assert.True(t, c.Lines()[0].UnitPrice.IsZero())
	assert.True(t, c.TotalPrice().IsZero())
}

func TestReduce_BatchFoldsLikeSingleAdds(t *testing.T) {
	items := []LineItem{
		item("P1", 1, "10", map[string]string{"Size": "M"}),
		item("P2", 2, "3", nil),
		item("P1", 4, "10", map[string]string{"Size": "M"}),
	}

	batched := mustReduce(t, Cart{}, AddBatch(items))

	single := Cart{}
	for _, it := range items {
		single = mustReduce(t, single, AddOne(it))
	}
	assert.Equal(t, single.Lines(), batched.Lines())
	assert.Equal(t, 5, batched.Lines()[0].Quantity)
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	sel := map[string]string{"Size": "M"}
	c := NewCart(item("P1", 1, "10", sel))
	before := c.Lines()

	_, _ = Reduce(c, AddOne(item("P1", 2, "10", sel)))
	_, _ = Reduce(c, UpdateQuantity{LineKey: "P1_Size:M", Quantity: 9})
	_, _ = Reduce(c, UpdateAttribute{LineKey: "P1_Size:M", Name: "Size", Value: "L"})
	_, _ = Reduce(c, ClearCart{})

	assert.Equal(t, before, c.Lines())

	sel["Size"] = "XL"
	assert.Equal(t, "P1_Size:M", c.Lines()[0].Key(), "cart must not alias caller maps")
}

// ============================================================================
// UpdateQuantity
// ============================================================================

func TestReduce_UpdateQuantityByKey(t *testing.T) {
	c := NewCart(
		item("P1", 1, "10", map[string]string{"Size": "M"}),
		item("P1", 1, "10", map[string]string{"Size": "L"}),
	)

	c = mustReduce(t, c, UpdateQuantity{LineKey: "P1_Size:L", Quantity: 7})
	lines := c.Lines()
	assert.Equal(t, 1, lines[0].Quantity)
	assert.Equal(t, 7, lines[1].Quantity)
}

func TestReduce_UpdateQuantityZeroRemoves(t *testing.T) {
	c := NewCart(item("P1", 3, "10", nil), item("P2", 1, "4", nil))

	c = mustReduce(t, c, UpdateQuantity{LineKey: "P1_", Quantity: 0})
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "P2", c.Lines()[0].ProductID)

	c = mustReduce(t, c, UpdateQuantity{LineKey: "P2_", Quantity: -1})
	assert.True(t, c.IsEmpty())
}

func TestReduce_UpdateQuantityProductFallback(t *testing.T) {
	c := NewCart(
		item("P1", 1, "10", map[string]string{"Size": "M"}),
		item("P1", 2, "10", map[string]string{"Size": "L"}),
		item("P2", 1, "4", nil),
	)

	c = mustReduce(t, c, UpdateQuantity{ProductID: "P1", Quantity: 4})
	lines := c.Lines()
	assert.Equal(t, 4, lines[0].Quantity)
	assert.Equal(t, 4, lines[1].Quantity)
	assert.Equal(t, 1, lines[2].Quantity)
}

func TestReduce_UpdateQuantityUnknownTarget(t *testing.T) {
	c := NewCart(item("P1", 1, "10", nil))

	next, changed := Reduce(c, UpdateQuantity{LineKey: "nope_", Quantity: 3})
	assert.False(t, changed)
	assert.Equal(t, c, next)

	next, changed = Reduce(c, UpdateQuantity{LineKey: "P1_", Quantity: 1})
	assert.False(t, changed, "same quantity is not a change")
	assert.Equal(t, c, next)
}

// ============================================================================
// UpdateAttribute
// ============================================================================

func TestReduce_UpdateAttributeRekeys(t *testing.T) {
	c := NewCart(item("P1", 2, "10", map[string]string{"Size": "M", "Color": "Red"}))

	c = mustReduce(t, c, UpdateAttribute{LineKey: "P1_Color:Red|Size:M", Name: "Size", Value: "L"})
	require.Equal(t, 1, c.Len())
	line := c.Lines()[0]
	assert.Equal(t, "P1_Color:Red|Size:L", line.Key())
	assert.Equal(t, 2, line.Quantity)
}

func TestReduce_UpdateAttributeCollisionMerges(t *testing.T) {
	c := NewCart(
		item("P1", 1, "10", map[string]string{"Size": "S"}),
		item("P1", 2, "10", map[string]string{"Size": "M"}),
	)
	before := c.ItemCount()

	c = mustReduce(t, c, UpdateAttribute{LineKey: "P1_Size:S", Name: "Size", Value: "M"})
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "P1_Size:M", c.Lines()[0].Key())
	assert.Equal(t, 3, c.Lines()[0].Quantity)
	assert.Equal(t, before, c.ItemCount())
}

func TestReduce_UpdateAttributeByProductMergesIntoExisting(t *testing.T) {
	c := NewCart(
		item("P1", 2, "10", map[string]string{"Size": "S"}),
		item("P1", 3, "10", map[string]string{"Size": "M"}),
	)

	c = mustReduce(t, c, UpdateAttribute{ProductID: "P1", Name: "Size", Value: "M"})
	require.Equal(t, 1, c.Len())
	assert.Equal(t, "P1_Size:M", c.Lines()[0].Key())
	assert.Equal(t, 5, c.Lines()[0].Quantity)
	_, ok := c.Find("P1_Size:S")
	assert.False(t, ok)
}

func TestReduce_UpdateAttributeProductFallbackUsesFirstLine(t *testing.T) {
	c := NewCart(
		item("P1", 1, "10", map[string]string{"Size": "S"}),
		item("P1", 1, "10", map[string]string{"Size": "L"}),
	)

	c = mustReduce(t, c, UpdateAttribute{ProductID: "P1", Name: "Color", Value: "Blue"})
	lines := c.Lines()
	assert.Equal(t, "P1_Color:Blue|Size:S", lines[0].Key())
	assert.Equal(t, "P1_Size:L", lines[1].Key())
}

func TestReduce_UpdateAttributeNoops(t *testing.T) {
	c := NewCart(item("P1", 1, "10", map[string]string{"Size": "S"}))

	_, changed := Reduce(c, UpdateAttribute{LineKey: "P1_Size:S", Name: "Size", Value: "S"})
	assert.False(t, changed)

	_, changed = Reduce(c, UpdateAttribute{LineKey: "P9_", Name: "Size", Value: "M"})
	assert.False(t, changed)

	_, changed = Reduce(c, UpdateAttribute{ProductID: "P9", Name: "Size", Value: "M"})
	assert.False(t, changed)
}

// ============================================================================
// ClearCart and derived values
// ============================================================================

func TestReduce_Clear(t *testing.T) {
	c := NewCart(item("P1", 1, "10", nil))
	c = mustReduce(t, c, ClearCart{})
	assert.True(t, c.IsEmpty())

	_, changed := Reduce(c, ClearCart{})
	assert.False(t, changed)
}

func TestCart_TotalsAreExact(t *testing.T) {
	c := NewCart()
	for i := 0; i < 10; i++ {
		c = mustReduce(t, c, AddOne(item("P1", 1, "0.1", nil)))
	}
	assert.Equal(t, "1", c.TotalPrice().String())
	assert.Equal(t, 10, c.ItemCount())

	c = NewCart(item("A", 3, "144.69", nil), item("B", 2, "1688.03", nil))
	assert.Equal(t, "3810.13", c.TotalPrice().StringFixed(2))
	assert.Equal(t, 5, c.ItemCount())
}

func TestCart_CurrencyLabel(t *testing.T) {
	assert.Equal(t, DefaultCurrencyLabel, Cart{}.CurrencyLabel())

	li := item("P1", 1, "10", nil)
	li.CurrencyLabel = "€"
	assert.Equal(t, "€", NewCart(li).CurrencyLabel())
}

func TestCart_Find(t *testing.T) {
	c := NewCart(item("P1", 1, "10", map[string]string{"Size": "M"}))

	li, ok := c.Find("P1_Size:M")
	require.True(t, ok)
	assert.Equal(t, "P1", li.ProductID)

	_, ok = c.Find("P1_")
	assert.False(t, ok)
}

// ============================================================================
// Randomized invariants
// ============================================================================

func TestReduce_RandomSequencesKeepInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 42))
	products := []string{"P1", "P2", "P3"}
	sizes := []string{"", "S", "M", "L"}
	colors := []string{"", "Red", "Blue"}

	randomSelection := func() map[string]string {
		sel := map[string]string{}
		if s := sizes[rng.IntN(len(sizes))]; s != "" {
			sel["Size"] = s
		}
		if c := colors[rng.IntN(len(colors))]; c != "" {
			sel["Color"] = c
		}
		return sel
	}

	c := Cart{}
	for step := 0; step < 2000; step++ {
		var a Action
		lines := c.Lines()
		switch rng.IntN(10) {
		case 0, 1, 2, 3:
			a = AddOne(item(products[rng.IntN(len(products))], rng.IntN(4), "2.5", randomSelection()))
		case 4, 5:
			if len(lines) == 0 {
				continue
			}
			target := lines[rng.IntN(len(lines))]
			a = UpdateQuantity{LineKey: target.Key(), Quantity: rng.IntN(5) - 1}
		case 6, 7, 8:
			if len(lines) == 0 {
				continue
			}
			target := lines[rng.IntN(len(lines))]
			name := "Size"
			value := sizes[rng.IntN(len(sizes))]
			if rng.IntN(2) == 0 {
				name, value = "Color", colors[rng.IntN(len(colors))]
			}
			a = UpdateAttribute{LineKey: target.Key(), Name: name, Value: value}
		default:
			if rng.IntN(5) == 0 {
				a = ClearCart{}
			} else {
				continue
			}
		}

		before := c.ItemCount()
		next, changed := Reduce(c, a)
		if _, ok := a.(UpdateAttribute); ok {
			assert.Equal(t, before, next.ItemCount(), "step %d: attribute change must conserve quantity", step)
		}
		if !changed {
			assert.Equal(t, c, next, "step %d", step)
		}
		c = next
		assertInvariants(t, c)

		want := decimal.NewFromFloat(2.5).Mul(decimal.NewFromInt(int64(c.ItemCount())))
		assert.True(t, want.Equal(c.TotalPrice()), "step %d: total %s want %s", step, c.TotalPrice(), want)
	}
}
