// Package catalog declares the fixed set of accounts tracked by the
// application: the balance-sheet categories, the income/expense categories
// and the tax return lines.
//
// The same ordered catalog drives the totals engine, the HTML forms, the
// SQLite persistence and the spreadsheet mirror header, so a field added here
// shows up everywhere.
package catalog

// Role classifies how a category contributes to totals.
type Role string

const (
	RoleAsset     Role = "asset"
	RoleLiability Role = "liability"
	RoleIncome    Role = "income"
	RoleSavings   Role = "savings"
	RoleExpense   Role = "expense"
)

// Balance category keys.
const (
	Checking    = "checking"
	Savings     = "savings"
	Investments = "investments"
	Retirement  = "retirement"
	Property    = "property"
	CreditCards = "credit_cards"
	Loans       = "loans"
)

// Income category keys. Loans and CreditCards are shared names with the
// balance catalog but live in a separate namespace.
const (
	Interest                = "interest"
	Dividends               = "dividends"
	Salary                  = "salary"
	OtherIncome             = "other_income"
	RetirementContributions = "retirement_contributions"
	InvestmentContributions = "investment_contributions"
	SavingsContributions    = "savings_contributions"
	Taxes                   = "taxes"
	Benefits                = "benefits"
	Housing                 = "housing"
	Utilities               = "utilities"
)

// Field is a single tracked amount.
type Field struct {
	Key   string
	Label string
}

// Category groups fields under a subtotal.
type Category struct {
	Key    string
	Label  string
	Role   Role
	Fields []Field
}

// Catalog is an ordered, immutable set of categories. Ungrouped holds fields
// that count toward their role's total without having a subtotal of their own.
type Catalog struct {
	name         string
	categories   []Category
	ungrouped    []Field
	ungroupedFor Role
	index        map[string]Role
	order        []string
}

func newCatalog(name string, categories []Category, ungroupedRole Role, ungrouped []Field) *Catalog {
	c := &Catalog{
		name:         name,
		categories:   categories,
		ungrouped:    ungrouped,
		ungroupedFor: ungroupedRole,
		index:        make(map[string]Role),
	}
	for _, cat := range categories {
		for _, f := range cat.Fields {
			if _, dup := c.index[f.Key]; dup {
				panic("catalog: duplicate field " + f.Key + " in " + name)
			}
			c.index[f.Key] = cat.Role
			c.order = append(c.order, f.Key)
		}
	}
	for _, f := range ungrouped {
		if _, dup := c.index[f.Key]; dup {
			panic("catalog: duplicate field " + f.Key + " in " + name)
		}
		c.index[f.Key] = ungroupedRole
		c.order = append(c.order, f.Key)
	}
	return c
}

// Name returns the catalog name ("balance", "income", "tax").
func (c *Catalog) Name() string { return c.name }

// Categories returns the ordered categories. Callers must not modify the result.
func (c *Catalog) Categories() []Category { return c.categories }

// Ungrouped returns the fields without a subtotal.
func (c *Catalog) Ungrouped() []Field { return c.ungrouped }

// UngroupedRole is the role the ungrouped fields count toward.
func (c *Catalog) UngroupedRole() Role { return c.ungroupedFor }

// Has reports whether key is a field of this catalog.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// RoleOf returns the role of a field key.
func (c *Catalog) RoleOf(key string) (Role, bool) {
	r, ok := c.index[key]
	return r, ok
}

// Keys returns every field key in display order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Category looks up a category by key.
func (c *Catalog) Category(key string) (Category, bool) {
	for _, cat := range c.categories {
		if cat.Key == key {
			return cat, true
		}
	}
	return Category{}, false
}

// CategoriesWithRole returns categories of the given role in order.
func (c *Catalog) CategoriesWithRole(role Role) []Category {
	var out []Category
	for _, cat := range c.categories {
		if cat.Role == role {
			out = append(out, cat)
		}
	}
	return out
}

// Label returns the display label for a field key, or the key itself.
func (c *Catalog) Label(key string) string {
	for _, cat := range c.categories {
		for _, f := range cat.Fields {
			if f.Key == key {
				return f.Label
			}
		}
	}
	for _, f := range c.ungrouped {
		if f.Key == key {
			return f.Label
		}
	}
	return key
}
