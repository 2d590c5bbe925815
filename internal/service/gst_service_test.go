package service

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// --- In-memory fakes ---

type fakeCategoryRepo struct {
	categories map[int64]*model.Category
}

func newFakeCategoryRepo(categories ...*model.Category) *fakeCategoryRepo {
	m := make(map[int64]*model.Category)
	for _, c := range categories {
		m[c.CategoryID] = c
	}
	return &fakeCategoryRepo{categories: m}
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *model.Category) error {
	f.categories[category.CategoryID] = category
	return nil
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *model.Category) error {
	f.categories[category.CategoryID] = category
	return nil
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id int64) error {
	delete(f.categories, id)
	return nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id int64) (*model.Category, error) {
	if c, ok := f.categories[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) FindByIDAndShop(ctx context.Context, id, shopID int64) (*model.Category, error) {
	if c, ok := f.categories[id]; ok && c.ShopID == shopID {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCategoryRepo) ListByShop(ctx context.Context, shopID int64) ([]model.Category, error) {
	var out []model.Category
	for _, c := range f.categories {
		if c.ShopID == shopID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCategoryRepo) CountChildren(ctx context.Context, id int64) (int64, error) {
	var n int64
	for _, c := range f.categories {
		if c.ParentID != nil && *c.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (f *fakeCategoryRepo) CountProducts(ctx context.Context, id int64) (int64, error) { return 0, nil }
func (f *fakeCategoryRepo) CountRules(ctx context.Context, id int64) (int64, error)    { return 0, nil }

type fakeGSTRuleRepo struct {
	rules []model.GSTRule
}

func (f *fakeGSTRuleRepo) Create(ctx context.Context, rule *model.GSTRule) error {
	f.rules = append(f.rules, *rule)
	return nil
}

func (f *fakeGSTRuleRepo) Update(ctx context.Context, rule *model.GSTRule) error {
	for i := range f.rules {
		if f.rules[i].ID == rule.ID {
			f.rules[i] = *rule
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeGSTRuleRepo) Delete(ctx context.Context, id int64) error {
	for i := range f.rules {
		if f.rules[i].ID == id {
			f.rules = append(f.rules[:i], f.rules[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeGSTRuleRepo) FindByID(ctx context.Context, id int64) (*model.GSTRule, error) {
	for i := range f.rules {
		if f.rules[i].ID == id {
			r := f.rules[i]
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGSTRuleRepo) FindByNameAndShop(ctx context.Context, name string, shopID int64) (*model.GSTRule, error) {
	for i := range f.rules {
		if f.rules[i].Name == name && f.rules[i].ShopID == shopID {
			r := f.rules[i]
			return &r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeGSTRuleRepo) List(ctx context.Context, shopID int64, categoryID *int64, isActive *bool, page, limit int) ([]model.GSTRule, int64, error) {
	var out []model.GSTRule
	for _, r := range f.rules {
		if r.ShopID != shopID {
			continue
		}
		if categoryID != nil && r.CategoryID != *categoryID {
			continue
		}
		if isActive != nil && r.IsActive != *isActive {
			continue
		}
		out = append(out, r)
	}
	return out, int64(len(out)), nil
}

// FindCandidates mirrors the SQL filter: active rules of the shop attached
// to any lineage category whose date window contains the day, newest first.
func (f *fakeGSTRuleRepo) FindCandidates(ctx context.Context, shopID int64, categoryIDs []int64, day time.Time) ([]model.GSTRule, error) {
	inLineage := make(map[int64]bool, len(categoryIDs))
	for _, id := range categoryIDs {
		inLineage[id] = true
	}

	var out []model.GSTRule
	for _, r := range f.rules {
		if !r.IsActive || r.ShopID != shopID || !inLineage[r.CategoryID] {
			continue
		}
		if !r.InWindow(day) {
			continue
		}
		out = append(out, r)
	}

	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			if out[j].ID > out[i].ID {
				out[i], out[j] = out[j], out[i]
			}
		}
	}
	return out, nil
}

// --- Helpers ---

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func datePtr(s string) *time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return &t
}

func category(id, shopID int64, parentID *int64) *model.Category {
	return &model.Category{CategoryID: id, ShopID: shopID, Name: "cat", ParentID: parentID, IsActive: true}
}

func int64Ptr(v int64) *int64 { return &v }

func activeRule(id, shopID, categoryID int64, rate string) model.GSTRule {
	return model.GSTRule{
		ID:                 id,
		Name:               "rule",
		ShopID:             shopID,
		CategoryID:         categoryID,
		PriceConditionType: model.PriceCondAny,
		GSTRatePercentage:  dec(rate),
		IsActive:           true,
	}
}

func newTestGSTService(ruleRepo *fakeGSTRuleRepo, categoryRepo *fakeCategoryRepo) *gstService {
	return &gstService{
		ruleRepo:     ruleRepo,
		categoryRepo: categoryRepo,
		now:          func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) },
	}
}

// --- Resolution tests ---

func TestFindApplicableRule_DirectCategoryMatch(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{activeRule(1, 1, 10, "18")}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 10, dec("500"))
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, int64(1), rule.ID)
	assert.True(t, rule.GSTRatePercentage.Equal(dec("18")))
}

func TestFindApplicableRule_FallsThroughEmptyLevelToAncestor(t *testing.T) {
	// electronics <- phones <- smartphones; only electronics has a rule
	categories := newFakeCategoryRepo(
		category(1, 1, nil),
		category(2, 1, int64Ptr(1)),
		category(3, 1, int64Ptr(2)),
	)
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{activeRule(7, 1, 1, "12")}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 3, dec("250"))
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, int64(7), rule.ID)
}

func TestFindApplicableRule_SpecificLevelShadowsAncestor(t *testing.T) {
	categories := newFakeCategoryRepo(
		category(1, 1, nil),
		category(2, 1, int64Ptr(1)),
	)
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{
		activeRule(1, 1, 1, "28"), // ancestor
		activeRule(2, 1, 2, "5"),  // direct category
	}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 2, dec("100"))
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, int64(2), rule.ID)
}

func TestFindApplicableRule_NonEmptyLevelWithNoPriceMatchIsFinal(t *testing.T) {
	// The child level has a rule, but its price condition fails. The ancestor
	// rule must NOT apply: a level with rules settles the outcome.
	categories := newFakeCategoryRepo(
		category(1, 1, nil),
		category(2, 1, int64Ptr(1)),
	)
	childRule := activeRule(2, 1, 2, "5")
	childRule.PriceConditionType = model.PriceCondLessThan
	childRule.PriceConditionValue = decPtr("100")
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{
		activeRule(1, 1, 1, "28"),
		childRule,
	}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 2, dec("150"))
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestFindApplicableRule_TieBreaksOnHighestID(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{
		activeRule(3, 1, 10, "12"),
		activeRule(9, 1, 10, "18"),
		activeRule(5, 1, 10, "28"),
	}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 10, dec("99"))
	require.NoError(t, err)
	require.NotNil(t, rule)
	assert.Equal(t, int64(9), rule.ID)
}

func TestFindApplicableRule_PriceConditions(t *testing.T) {
	cases := []struct {
		name      string
		condType  string
		condValue string
		price     string
		matches   bool
	}{
		{"less_than match", model.PriceCondLessThan, "100", "99.99", true},
		{"less_than boundary excluded", model.PriceCondLessThan, "100", "100", false},
		{"less_than_or_equal boundary", model.PriceCondLessThanOrEqual, "100", "100", true},
		{"greater_than match", model.PriceCondGreaterThan, "100", "100.01", true},
		{"greater_than boundary excluded", model.PriceCondGreaterThan, "100", "100", false},
		{"greater_than_or_equal boundary", model.PriceCondGreaterThanOrEqual, "100", "100", true},
		{"equal match", model.PriceCondEqual, "49.50", "49.50", true},
		{"equal mismatch", model.PriceCondEqual, "49.50", "49.51", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			categories := newFakeCategoryRepo(category(10, 1, nil))
			r := activeRule(1, 1, 10, "18")
			r.PriceConditionType = tc.condType
			r.PriceConditionValue = decPtr(tc.condValue)
			rules := &fakeGSTRuleRepo{rules: []model.GSTRule{r}}
			svc := newTestGSTService(rules, categories)

			rule, err := svc.FindApplicableRule(context.Background(), 1, 10, dec(tc.price))
			require.NoError(t, err)
			if tc.matches {
				require.NotNil(t, rule)
			} else {
				assert.Nil(t, rule)
			}
		})
	}
}

func TestFindApplicableRule_IgnoresInactiveAndOutOfWindowRules(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))

	inactive := activeRule(1, 1, 10, "18")
	inactive.IsActive = false

	expired := activeRule(2, 1, 10, "12")
	expired.EndDate = datePtr("2025-01-31")

	notYet := activeRule(3, 1, 10, "28")
	notYet.StartDate = datePtr("2025-12-01")

	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{inactive, expired, notYet}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 10, dec("50"))
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestFindApplicableRule_WindowBoundsAreInclusive(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))

	r := activeRule(1, 1, 10, "18")
	r.StartDate = datePtr("2025-06-15")
	r.EndDate = datePtr("2025-06-15")
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{r}}
	svc := newTestGSTService(rules, categories)

	// now() is mid-day on 2025-06-15; the single-day window must still match
	rule, err := svc.FindApplicableRule(context.Background(), 1, 10, dec("50"))
	require.NoError(t, err)
	require.NotNil(t, rule)
}

func TestFindApplicableRule_UnknownCategoryReturnsNoRule(t *testing.T) {
	svc := newTestGSTService(&fakeGSTRuleRepo{}, newFakeCategoryRepo())

	rule, err := svc.FindApplicableRule(context.Background(), 1, 999, dec("50"))
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestFindApplicableRule_OtherShopRulesNeverApply(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{activeRule(1, 2, 10, "18")}}
	svc := newTestGSTService(rules, categories)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 10, dec("50"))
	require.NoError(t, err)
	assert.Nil(t, rule)
}

func TestFindApplicableRule_ElectronicsPhonesScenario(t *testing.T) {
	// Electronics (root, ANY @ 18%) <- Phones (GREATER_THAN 50000 @ 28%).
	// An expensive phone takes the phone-level rule; a cheap phone resolves
	// to no rule at all because the phone level exists but did not match.
	categories := newFakeCategoryRepo(
		category(1, 1, nil),
		category(2, 1, int64Ptr(1)),
	)
	ruleA := activeRule(1, 1, 1, "18")
	ruleB := activeRule(2, 1, 2, "28")
	ruleB.PriceConditionType = model.PriceCondGreaterThan
	ruleB.PriceConditionValue = decPtr("50000")
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{ruleA, ruleB}}
	svc := newTestGSTService(rules, categories)

	expensive, err := svc.FindApplicableRule(context.Background(), 1, 2, dec("60000"))
	require.NoError(t, err)
	require.NotNil(t, expensive)
	assert.Equal(t, int64(2), expensive.ID)

	cheap, err := svc.FindApplicableRule(context.Background(), 1, 2, dec("20000"))
	require.NoError(t, err)
	assert.Nil(t, cheap)
}

// --- Lineage tests ---

func TestCategoryLineage_OrderedMostSpecificFirst(t *testing.T) {
	categories := newFakeCategoryRepo(
		category(1, 1, nil),
		category(2, 1, int64Ptr(1)),
		category(3, 1, int64Ptr(2)),
	)
	svc := newTestGSTService(&fakeGSTRuleRepo{}, categories)

	lineage, err := svc.categoryLineage(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 2, 1}, lineage)
}

func TestCategoryLineage_StopsOnCycle(t *testing.T) {
	// 1 -> 2 -> 1 cycle
	categories := newFakeCategoryRepo(
		category(1, 1, int64Ptr(2)),
		category(2, 1, int64Ptr(1)),
	)
	svc := newTestGSTService(&fakeGSTRuleRepo{}, categories)

	lineage, err := svc.categoryLineage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, lineage)
}

func TestCategoryLineage_SelfParentCycle(t *testing.T) {
	categories := newFakeCategoryRepo(category(1, 1, int64Ptr(1)))
	svc := newTestGSTService(&fakeGSTRuleRepo{}, categories)

	lineage, err := svc.categoryLineage(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, lineage)
}

func TestCategoryLineage_BrokenParentLinkKeepsPartialLineage(t *testing.T) {
	// Parent 99 does not exist; the walk stops but category 5 still resolves
	categories := newFakeCategoryRepo(category(5, 1, int64Ptr(99)))
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{activeRule(1, 1, 5, "18")}}
	svc := newTestGSTService(rules, categories)

	lineage, err := svc.categoryLineage(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []int64{5}, lineage)

	rule, err := svc.FindApplicableRule(context.Background(), 1, 5, dec("20"))
	require.NoError(t, err)
	require.NotNil(t, rule)
}

func TestCategoryLineage_DepthCap(t *testing.T) {
	var categories []*model.Category
	categories = append(categories, category(1, 1, nil))
	for i := int64(2); i <= 30; i++ {
		categories = append(categories, category(i, 1, int64Ptr(i-1)))
	}
	svc := newTestGSTService(&fakeGSTRuleRepo{}, newFakeCategoryRepo(categories...))

	lineage, err := svc.categoryLineage(context.Background(), 30)
	require.NoError(t, err)
	assert.Len(t, lineage, maxLineageDepth)
	assert.Equal(t, int64(30), lineage[0])
}

// --- Pure selector tests ---

func TestSelectApplicableRule_SkipsLevelsWithoutRules(t *testing.T) {
	lineage := []int64{3, 2, 1}
	candidates := []model.GSTRule{activeRule(4, 1, 1, "12")}

	got := selectApplicableRule(candidates, lineage, dec("10"))
	require.NotNil(t, got)
	assert.Equal(t, int64(4), got.ID)
}

func TestSelectApplicableRule_MixedMatchAndMissAtSameLevel(t *testing.T) {
	under := activeRule(1, 1, 3, "5")
	under.PriceConditionType = model.PriceCondLessThan
	under.PriceConditionValue = decPtr("100")

	over := activeRule(2, 1, 3, "18")
	over.PriceConditionType = model.PriceCondGreaterThanOrEqual
	over.PriceConditionValue = decPtr("100")

	got := selectApplicableRule([]model.GSTRule{under, over}, []int64{3}, dec("250"))
	require.NotNil(t, got)
	assert.Equal(t, int64(2), got.ID)
}

func TestSelectApplicableRule_EmptyInputs(t *testing.T) {
	assert.Nil(t, selectApplicableRule(nil, []int64{1, 2}, dec("10")))
	assert.Nil(t, selectApplicableRule([]model.GSTRule{activeRule(1, 1, 5, "18")}, nil, dec("10")))
}

// --- Breakdown tests ---

func TestSplitInclusivePrice(t *testing.T) {
	cases := []struct {
		name      string
		inclusive string
		rate      string
		base      string
		gst       string
	}{
		{"18 percent of 118", "118.00", "18", "100.00", "18.00"},
		{"5 percent of 105", "105.00", "5", "100.00", "5.00"},
		{"rounding half up", "99.99", "18", "84.74", "15.25"},
		{"zero rate passes through", "49.95", "0", "49.95", "0.00"},
		{"small amount", "0.05", "18", "0.04", "0.01"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			base, gst := SplitInclusivePrice(dec(tc.inclusive), dec(tc.rate))
			assert.Equal(t, tc.base, base.StringFixed(2))
			assert.Equal(t, tc.gst, gst.StringFixed(2))
			assert.True(t, base.Add(gst).Equal(dec(tc.inclusive)), "base + gst must reproduce the inclusive price")
		})
	}
}

// --- Resolve endpoint semantics ---

func TestResolve_UnparseablePriceMeansNoMatch(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{activeRule(1, 1, 10, "18")}}
	svc := newTestGSTService(rules, categories)

	res, err := svc.Resolve(context.Background(), ResolveGSTRequest{
		ShopID: 1, CategoryID: 10, InclusivePrice: "not-a-number",
	})
	require.NoError(t, err)
	assert.False(t, res.Matched)
	assert.Nil(t, res.Rule)
	assert.Equal(t, "0.00", res.GSTRatePercentage)
}

func TestResolve_ReturnsBreakdown(t *testing.T) {
	categories := newFakeCategoryRepo(category(10, 1, nil))
	rules := &fakeGSTRuleRepo{rules: []model.GSTRule{activeRule(1, 1, 10, "18")}}
	svc := newTestGSTService(rules, categories)

	res, err := svc.Resolve(context.Background(), ResolveGSTRequest{
		ShopID: 1, CategoryID: 10, InclusivePrice: "118.00",
	})
	require.NoError(t, err)
	assert.True(t, res.Matched)
	require.NotNil(t, res.Rule)
	assert.Equal(t, "18.00", res.GSTRatePercentage)
	assert.Equal(t, "100.00", res.BasePrice)
	assert.Equal(t, "18.00", res.GSTAmount)
}
