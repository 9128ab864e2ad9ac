package catalog

// Balance is the balance-sheet catalog.
var Balance = newCatalog("balance", []Category{
	{Key: Checking, Label: "Checking", Role: RoleAsset, Fields: []Field{
		{"huntington_check", "Huntington Checking"},
		{"fifththird_check", "Fifth Third Checking"},
	}},
	{Key: Savings, Label: "Savings", Role: RoleAsset, Fields: []Field{
		{"huntington_save", "Huntington Savings"},
		{"fifththird_save", "Fifth Third Savings"},
		{"capone_save", "Capital One Savings"},
		{"amex_save", "Amex Savings"},
	}},
	{Key: Investments, Label: "Investments", Role: RoleAsset, Fields: []Field{
		{"robinhood_invest", "Robinhood"},
		{"deacon_invest", "Deacon"},
		{"buckeye_invest", "Buckeye"},
	}},
	{Key: Retirement, Label: "Retirement", Role: RoleAsset, Fields: []Field{
		{"opers_retire", "OPERS"},
		{"four57_retire", "457(b)"},
		{"four01_retire", "401(k)"},
		{"roth_retire", "Roth IRA"},
	}},
	{Key: Property, Label: "Property", Role: RoleAsset, Fields: []Field{
		{"main_home", "Home"},
		{"justin_car", "Justin's Car"},
		{"kat_car", "Kat's Car"},
	}},
	{Key: CreditCards, Label: "Credit Cards", Role: RoleLiability, Fields: []Field{
		{"capone_credit", "Capital One Card"},
		{"amex_credit", "Amex Card"},
		{"discover_credit", "Discover Card"},
	}},
	{Key: Loans, Label: "Loans", Role: RoleLiability, Fields: []Field{
		{"car_loan", "Car Loan"},
		{"pubstudent_loan", "Public Student Loan"},
		{"privstudent_loan", "Private Student Loan"},
		{"main_mortgage", "Mortgage"},
	}},
}, RoleAsset, nil)

// Income is the monthly income/expense catalog. The ungrouped fields are
// expenses that count toward total expenses without a subtotal.
var Income = newCatalog("income", []Category{
	{Key: Interest, Label: "Interest", Role: RoleIncome, Fields: []Field{
		{"huntington_interest", "Huntington Interest"},
		{"fifththird_interest", "Fifth Third Interest"},
		{"capone_interest", "Capital One Interest"},
		{"amex_interest", "Amex Interest"},
		{"schwab_interest", "Schwab Interest"},
	}},
	{Key: Dividends, Label: "Dividends", Role: RoleIncome, Fields: []Field{
		{"schwab_dividends", "Schwab Dividends"},
	}},
	{Key: Salary, Label: "Salary", Role: RoleIncome, Fields: []Field{
		{"supremecourt_salary", "Supreme Court Salary"},
		{"cdm_salary", "CDM Salary"},
	}},
	{Key: OtherIncome, Label: "Other Income", Role: RoleIncome, Fields: []Field{
		{"expense_checks", "Expense Checks"},
		{"miscellaneous_income", "Miscellaneous"},
		{"refund_rebate_repayment", "Refunds / Rebates"},
		{"gift_income", "Gifts"},
	}},
	{Key: RetirementContributions, Label: "Retirement Contributions", Role: RoleSavings, Fields: []Field{
		{"opers_retirement", "OPERS"},
		{"four57b_retirement", "457(b)"},
		{"four01k_retirement", "401(k)"},
		{"roth_retirement", "Roth IRA"},
	}},
	{Key: InvestmentContributions, Label: "Investment Contributions", Role: RoleSavings, Fields: []Field{
		{"robinhood_investments", "Robinhood"},
		{"schwab_investments", "Schwab"},
	}},
	{Key: SavingsContributions, Label: "Savings Contributions", Role: RoleSavings, Fields: []Field{
		{"amex_savings", "Amex Savings"},
		{"fifththird_savings", "Fifth Third Savings"},
		{"capone_savings", "Capital One Savings"},
		{"five29_college", "529 College"},
		{"huntington_savings", "Huntington Savings"},
	}},
	{Key: Taxes, Label: "Taxes", Role: RoleExpense, Fields: []Field{
		{"federal_tax", "Federal"},
		{"social_security", "Social Security"},
		{"medicare", "Medicare"},
		{"ohio_tax", "Ohio"},
		{"columbus_tax", "Columbus"},
	}},
	{Key: Benefits, Label: "Benefits", Role: RoleExpense, Fields: []Field{
		{"health_insurance", "Health Insurance"},
		{"supplementallife_insurance", "Supplemental Life"},
		{"flex_spending", "Flex Spending"},
		{"cdm_std", "CDM STD"},
		{"cdmsupplemental_ltd", "CDM Supplemental LTD"},
		{"parking", "Parking"},
		{"parking_admin", "Parking Admin"},
	}},
	{Key: Housing, Label: "Housing", Role: RoleExpense, Fields: []Field{
		{"main_mortgage", "Mortgage"},
		{"hoa_fees", "HOA Fees"},
	}},
	{Key: Utilities, Label: "Utilities", Role: RoleExpense, Fields: []Field{
		{"aep_electric", "AEP Electric"},
		{"rumpke_trash", "Rumpke Trash"},
		{"delaware_sewer", "Delaware Sewer"},
		{"delco_water", "DelCo Water"},
		{"suburban_gas", "Suburban Gas"},
		{"verizon_kat", "Verizon (Kat)"},
		{"sprint_justin", "Sprint (Justin)"},
		{"directtv_cable", "DirecTV"},
		{"timewarner_internet", "Time Warner Internet"},
	}},
	{Key: Loans, Label: "Loan Payments", Role: RoleExpense, Fields: []Field{
		{"caponeauto_loan", "Capital One Auto"},
		{"public_loan", "Public Student Loan"},
		{"private_loan", "Private Student Loan"},
	}},
	{Key: CreditCards, Label: "Credit Card Payments", Role: RoleExpense, Fields: []Field{
		{"capone_creditcard", "Capital One"},
		{"amex_creditcard", "Amex"},
		{"discover_creditcard", "Discover"},
		{"kohls_vicsec_macy_eddiebauer_creditcards", "Store Cards"},
		{"katwork_creditcard", "Kat Work Card"},
	}},
}, RoleExpense, []Field{
	{"auto_insurance", "Auto Insurance"},
	{"cashorcheck_purchases", "Cash / Check Purchases"},
	{"daycare", "Daycare"},
	{"taxdeductible_giving", "Tax-deductible Giving"},
})

// Tax return line keys.
const (
	TaxJobWages             = "job_wages"
	TaxFederalWages         = "federal_wages"
	TaxTotalIncome          = "total_income"
	TaxAdjustedGrossIncome  = "adjusted_gross_income"
	TaxItemizedDeductions   = "itemized_deductions"
	TaxFederalTaxableIncome = "federal_taxable_income"
	TaxFederalTaxOwed       = "federal_tax_owed"
	TaxFederalPayments      = "federal_payments"
	TaxStateTaxableIncome   = "state_taxable_income"
	TaxStateTaxOwed         = "state_tax_owed"
	TaxStatePayments        = "state_payments"
)

// TaxFields lists the tax return lines in form order.
var TaxFields = []Field{
	{TaxJobWages, "Total Job Wages"},
	{TaxFederalWages, "Total Federal Wages"},
	{TaxTotalIncome, "Total Income"},
	{TaxAdjustedGrossIncome, "Adjusted Gross Income"},
	{TaxItemizedDeductions, "Itemized Deductions"},
	{TaxFederalTaxableIncome, "Federal Taxable Income"},
	{TaxFederalTaxOwed, "Federal Tax Owed"},
	{TaxFederalPayments, "Federal Payments"},
	{TaxStateTaxableIncome, "State Taxable Income"},
	{TaxStateTaxOwed, "State Tax Owed"},
	{TaxStatePayments, "State Payments"},
}
