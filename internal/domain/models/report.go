package models

import "github.com/shopspring/decimal"

// ChapterView is a chapter with its totals and children.
type ChapterView struct {
	Code         string          `json:"code"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price"`
	RoundedPrice decimal.Decimal `json:"rounded_price"`
	Formatted    string          `json:"formatted"`
	Depth        int             `json:"depth"`
	SubChapters  []ChapterView   `json:"sub_chapters,omitempty"`
}

// ProjectSummary is the overview returned for the whole project.
type ProjectSummary struct {
	ChapterView
	Chapters         int `json:"chapters"`
	ElementaryPrices int `json:"elementary_prices"`
	CompoundPrices   int `json:"compound_prices"`
	QuantityLines    int `json:"quantity_lines"`
	Height           int `json:"height"`
}

// ComponentView is one line of a compound price.
type ComponentView struct {
	Code           string          `json:"code"`
	Factor         decimal.Decimal `json:"factor"`
	ProductionRate decimal.Decimal `json:"production_rate"`
	Product        decimal.Decimal `json:"product"`
	Amount         decimal.Decimal `json:"amount"`
}

// PriceView describes one elementary or compound price.
type PriceView struct {
	Code            string          `json:"code"`
	Title           string          `json:"title"`
	Unit            string          `json:"unit"`
	Type            string          `json:"type"`
	LongDescription string          `json:"long_description,omitempty"`
	Price           decimal.Decimal `json:"price"`
	RoundedPrice    decimal.Decimal `json:"rounded_price"`
	Formatted       string          `json:"formatted"`
	Compound        bool            `json:"compound"`
	Percentage      bool            `json:"percentage"`
	Workers         int             `json:"workers,omitempty"`
	Components      []ComponentView `json:"components,omitempty"`
}

// JustificationLine is one record of a price justification.
type JustificationLine struct {
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	Unit      string          `json:"unit"`
	Product   decimal.Decimal `json:"product"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

// JustificationSection groups the lines of one category.
type JustificationSection struct {
	Lines []JustificationLine `json:"lines"`
	Total decimal.Decimal     `json:"total"`
}

// JustificationView is the price justification of a compound price.
type JustificationView struct {
	Code         string               `json:"code"`
	Title        string               `json:"title"`
	Unit         string               `json:"unit"`
	Mode         string               `json:"mode"`
	Labour       JustificationSection `json:"labour"`
	Machinery    JustificationSection `json:"machinery"`
	Material     JustificationSection `json:"material"`
	Other        JustificationSection `json:"other"`
	Percentages  JustificationSection `json:"percentages"`
	Base         decimal.Decimal      `json:"base"`
	Total        decimal.Decimal      `json:"total"`
	Rounding     decimal.Decimal      `json:"rounding"`
	RoundedTotal decimal.Decimal      `json:"rounded_total"`
	Formatted    string               `json:"formatted"`
}

// QuantityRow is one line of a quantities listing.
type QuantityRow struct {
	Code      string          `json:"code"`
	Title     string          `json:"title"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
	Formatted string          `json:"formatted"`
}

// BudgetView holds the final budget figures.
type BudgetView struct {
	Execution        decimal.Decimal `json:"execution"`
	GeneralExpenses  decimal.Decimal `json:"general_expenses"`
	IndustrialProfit decimal.Decimal `json:"industrial_profit"`
	Contract         decimal.Decimal `json:"contract"`
	VAT              decimal.Decimal `json:"vat"`
	Total            decimal.Decimal `json:"total"`
	Formatted        string          `json:"formatted"`
}
