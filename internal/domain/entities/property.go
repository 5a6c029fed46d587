package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PropertyType classifies a development.
type PropertyType string

const (
	PropertyResidential PropertyType = "residential"
	PropertyCommercial  PropertyType = "commercial"
	PropertyMixedUse    PropertyType = "mixed-use"
)

// Valid reports whether t is a known type.
func (t PropertyType) Valid() bool {
	switch t {
	case PropertyResidential, PropertyCommercial, PropertyMixedUse:
		return true
	}
	return false
}

// PropertyStatus is the lifecycle stage of a development.
type PropertyStatus string

const (
	PropertyPlanning     PropertyStatus = "planning"
	PropertyConstruction PropertyStatus = "construction"
	PropertyActive       PropertyStatus = "active"
	PropertyComingSoon   PropertyStatus = "coming-soon"
	PropertySoldOut      PropertyStatus = "sold-out"
	PropertyCompleted    PropertyStatus = "completed"
)

// Valid reports whether s is a known status.
func (s PropertyStatus) Valid() bool {
	switch s {
	case PropertyPlanning, PropertyConstruction, PropertyActive, PropertyComingSoon, PropertySoldOut, PropertyCompleted:
		return true
	}
	return false
}

// Location is where a property is built.
type Location struct {
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

// Pricing holds valuation figures of a property.
type Pricing struct {
	TotalValue    decimal.Decimal `json:"totalValue"`
	MarketValue   decimal.Decimal `json:"marketValue"`
	ExpectedROI   decimal.Decimal `json:"expectedROI"`
	MinInvestment decimal.Decimal `json:"minInvestment"`
}

// Tokenization holds the token supply of a property.
type Tokenization struct {
	TotalTokens     int64           `json:"totalTokens"`
	AvailableTokens int64           `json:"availableTokens"`
	PricePerToken   decimal.Decimal `json:"pricePerToken"`
}

// Property represents a tokenized real-estate development
type Property struct {
	ID               uuid.UUID      `json:"id"`
	Title            string         `json:"title"`
	Slug             string         `json:"slug"`
	Description      string         `json:"description"`
	ShortDescription string         `json:"shortDescription"`
	Location         Location       `json:"location"`
	PropertyType     PropertyType   `json:"propertyType"`
	Status           PropertyStatus `json:"status"`
	Pricing          Pricing        `json:"pricing"`
	Tokenization     Tokenization   `json:"tokenization"`
	Images           []string       `json:"images"`
	Features         []string       `json:"features"`
	IsFeatured       bool           `json:"isFeatured"`
	IsActive         bool           `json:"isActive"`
	SortOrder        int            `json:"sortOrder"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// TokensSold is the number of tokens no longer available.
func (p *Property) TokensSold() int64 {
	return p.Tokenization.TotalTokens - p.Tokenization.AvailableTokens
}

// PropertyFilter narrows property listings.
type PropertyFilter struct {
	Status          PropertyStatus
	PropertyType    PropertyType
	City            string
	Featured        *bool
	IncludeInactive bool
}

// PropertyStats summarises funding progress of a property.
type PropertyStats struct {
	PropertyID      uuid.UUID       `json:"propertyId"`
	TotalTokens     int64           `json:"totalTokens"`
	TokensSold      int64           `json:"tokensSold"`
	AvailableTokens int64           `json:"availableTokens"`
	InvestorCount   int64           `json:"investorCount"`
	AmountRaised    decimal.Decimal `json:"amountRaised"`
	FundedPercent   decimal.Decimal `json:"fundedPercent"`
}

// CreatePropertyInput is the admin payload for a new property.
type CreatePropertyInput struct {
	Title            string          `json:"title" binding:"required,min=3,max=200"`
	Slug             string          `json:"slug" binding:"omitempty,max=200"`
	Description      string          `json:"description" binding:"required"`
	ShortDescription string          `json:"shortDescription" binding:"max=500"`
	Location         Location        `json:"location"`
	PropertyType     PropertyType    `json:"propertyType" binding:"required"`
	Status           PropertyStatus  `json:"status"`
	TotalValue       decimal.Decimal `json:"totalValue"`
	MarketValue      decimal.Decimal `json:"marketValue"`
	ExpectedROI      decimal.Decimal `json:"expectedROI"`
	MinInvestment    decimal.Decimal `json:"minInvestment"`
	TotalTokens      int64           `json:"totalTokens" binding:"required,gt=0"`
	PricePerToken    decimal.Decimal `json:"pricePerToken"`
	Images           []string        `json:"images"`
	Features         []string        `json:"features"`
	IsFeatured       bool            `json:"isFeatured"`
	SortOrder        int             `json:"sortOrder"`
}

// UpdatePropertyInput holds optional admin changes. Token supply is fixed at creation.
type UpdatePropertyInput struct {
	Title            *string          `json:"title" binding:"omitempty,min=3,max=200"`
	Description      *string          `json:"description"`
	ShortDescription *string          `json:"shortDescription" binding:"omitempty,max=500"`
	Location         *Location        `json:"location"`
	PropertyType     *PropertyType    `json:"propertyType"`
	Status           *PropertyStatus  `json:"status"`
	TotalValue       *decimal.Decimal `json:"totalValue"`
	MarketValue      *decimal.Decimal `json:"marketValue"`
	ExpectedROI      *decimal.Decimal `json:"expectedROI"`
	MinInvestment    *decimal.Decimal `json:"minInvestment"`
	PricePerToken    *decimal.Decimal `json:"pricePerToken"`
	Images           []string         `json:"images"`
	Features         []string         `json:"features"`
	IsFeatured       *bool            `json:"isFeatured"`
	SortOrder        *int             `json:"sortOrder"`
	TotalTokens      *int64           `json:"totalTokens"`
}
