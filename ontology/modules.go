package ontology

import (
	"slices"
	"sort"
)

// ModuleSet is a named, ordered list of module files relative to the ontology
// base path. Entries may be doublestar globs.
type ModuleSet struct {
	Name        string   `yaml:"name" json:"name"`
	DisplayName string   `yaml:"display_name" json:"display_name"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
	Modules     []string `yaml:"modules" json:"modules"`
}

// Title returns the display name, falling back to the set name.
func (m ModuleSet) Title() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Name
}

// Default module set names.
const (
	SetCore          = "core"
	SetComprehensive = "comprehensive"
	SetBanking       = "banking"
	SetSecurities    = "securities"
)

// DefaultModuleSets returns the built-in FIBO module sets.
func DefaultModuleSets() map[string]ModuleSet {
	return map[string]ModuleSet{
		SetCore: {
			Name:        SetCore,
			DisplayName: "Core Financial Concepts",
			Description: "Basic financial concepts including accounting equity, ownership, and equity instruments. Good for getting started with FIBO.",
			Modules: []string{
				"FND/Accounting/AccountingEquity.rdf",
				"FND/OwnershipAndControl/Ownership.rdf",
				"SEC/Equities/EquityInstruments.rdf",
			},
		},
		SetComprehensive: {
			Name:        SetComprehensive,
			DisplayName: "Comprehensive Financial Ontology",
			Description: "Full financial ontology coverage including debt instruments, financial instruments, securities, currencies, and business entities. Best for complete financial modeling.",
			Modules: []string{
				"FND/Accounting/AccountingEquity.rdf",
				"FND/OwnershipAndControl/Ownership.rdf",
				"SEC/Equities/EquityInstruments.rdf",
				"FND/Accounting/CurrencyAmount.rdf",
				"FND/Relations/Relations.rdf",
				"FND/Utilities/Values.rdf",
				"FND/DatesAndTimes/FinancialDates.rdf",
				"SEC/Securities/Securities.rdf",
				"SEC/Securities/SecuritiesIdentification.rdf",
				"SEC/Securities/SecuritiesIssuance.rdf",
				"SEC/Securities/SecuritiesListings.rdf",
				"FBC/FinancialInstruments/FinancialInstruments.rdf",
				"FBC/ProductsAndServices/FinancialProductsAndServices.rdf",
				"FBC/FunctionalEntities/FinancialServicesEntities.rdf",
				"FBC/DebtAndEquities/Debt.rdf",
				"BE/LegalEntities/LegalPersons.rdf",
			},
		},
		SetBanking: {
			Name:        SetBanking,
			DisplayName: "Banking & Financial Services",
			Description: "Focused on banking and financial services including debt, currency amounts, and financial service entities. Ideal for banking applications.",
			Modules: []string{
				"FND/Accounting/AccountingEquity.rdf",
				"FND/Accounting/CurrencyAmount.rdf",
				"FBC/FinancialInstruments/FinancialInstruments.rdf",
				"FBC/ProductsAndServices/FinancialProductsAndServices.rdf",
				"FBC/FunctionalEntities/FinancialServicesEntities.rdf",
				"FBC/DebtAndEquities/Debt.rdf",
			},
		},
		SetSecurities: {
			Name:        SetSecurities,
			DisplayName: "Securities & Capital Markets",
			Description: "Specialized in securities and capital markets including equity instruments, securities identification, issuance, and listings. Perfect for investment and trading applications.",
			Modules: []string{
				"SEC/Equities/EquityInstruments.rdf",
				"SEC/Securities/Securities.rdf",
				"SEC/Securities/SecuritiesIdentification.rdf",
				"SEC/Securities/SecuritiesIssuance.rdf",
				"SEC/Securities/SecuritiesListings.rdf",
				"FBC/FinancialInstruments/FinancialInstruments.rdf",
			},
		},
	}
}

// SortedSets returns the sets ordered by name.
func SortedSets(sets map[string]ModuleSet) []ModuleSet {
	out := make([]ModuleSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Comparison describes how two module sets overlap.
type Comparison struct {
	A, B   string
	TotalA int
	TotalB int
	Common []string
	OnlyA  []string
	OnlyB  []string

	// Overlap is the common module count as a percentage of the larger set.
	Overlap float64
}

// CompareModuleSets compares the module lists of a and b.
func CompareModuleSets(a, b ModuleSet) Comparison {
	inA := make(map[string]bool)
	for _, m := range a.Modules {
		inA[m] = true
	}
	inB := make(map[string]bool)
	for _, m := range b.Modules {
		inB[m] = true
	}

	cmp := Comparison{A: a.Name, B: b.Name, TotalA: len(inA), TotalB: len(inB)}
	for m := range inA {
		if inB[m] {
			cmp.Common = append(cmp.Common, m)
		} else {
			cmp.OnlyA = append(cmp.OnlyA, m)
		}
	}
	for m := range inB {
		if !inA[m] {
			cmp.OnlyB = append(cmp.OnlyB, m)
		}
	}
	slices.Sort(cmp.Common)
	slices.Sort(cmp.OnlyA)
	slices.Sort(cmp.OnlyB)

	if larger := max(cmp.TotalA, cmp.TotalB); larger > 0 {
		cmp.Overlap = float64(len(cmp.Common)) / float64(larger) * 100
	}
	return cmp
}
