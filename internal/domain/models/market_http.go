package models

// Requests for the market HTTP endpoints. Defined in domain for consistency and reuse.

type PricesRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"30" validate:"gte=1,lte=365"`
}

type SummaryRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}

type CompareRequest struct {
	Symbol1 string `query:"symbol1" json:"symbol1" validate:"required"`
	Symbol2 string `query:"symbol2" json:"symbol2" validate:"required,nefield=Symbol1"`
}

type TopMoversRequest struct {
	Limit int `query:"limit" json:"limit" default:"5" validate:"gte=1,lte=20"`
}

type ForecastRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
	Days   int    `query:"days" json:"days" default:"90" validate:"gte=30,lte=365"`
}

type SentimentRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}

type AnalyticsRequest struct {
	Symbol string `param:"symbol" json:"symbol" validate:"required"`
}
