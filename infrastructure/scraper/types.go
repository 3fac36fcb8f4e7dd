package scraper

// Wire shapes of the upstream scraping provider. Only the fields the
// service consumes are declared; the provider sends far more.

type requestInfo struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

type upstreamPrice struct {
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
}

type upstreamCategory struct {
	Name string `json:"name"`
}

type upstreamProduct struct {
	ASIN        string `json:"asin"`
	Title       string `json:"title"`
	Brand       string `json:"brand"`
	Description string `json:"description"`
	MainImage   struct {
		Link string `json:"link"`
	} `json:"main_image"`
	Link         string             `json:"link"`
	BuyboxWinner upstreamBuybox     `json:"buybox_winner"`
	Rating       *float64           `json:"rating"`
	RatingsTotal *int               `json:"ratings_total"`
	Categories   []upstreamCategory `json:"categories"`
}

type upstreamBuybox struct {
	Price        upstreamPrice `json:"price"`
	RRP          upstreamPrice `json:"rrp"`
	Availability struct {
		Raw string `json:"raw"`
	} `json:"availability"`
}

type upstreamSearchItem struct {
	ASIN    string        `json:"asin"`
	Title   string        `json:"title"`
	Image   string        `json:"image"`
	Link    string        `json:"link"`
	Price   upstreamPrice `json:"price"`
	Rating  *float64      `json:"rating"`
	IsPrime bool          `json:"is_prime"`
}

type upstreamDeal struct {
	ASIN       string        `json:"asin"`
	Title      string        `json:"title"`
	Image      string        `json:"image"`
	Link       string        `json:"link"`
	DealPrice  upstreamPrice `json:"deal_price"`
	ListPrice  upstreamPrice `json:"list_price"`
	SavingsPct *int          `json:"savings_percent"`
}

type upstreamReview struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Body    string  `json:"body"`
	Rating  float64 `json:"rating"`
	Profile struct {
		Name string `json:"name"`
	} `json:"profile"`
	Date struct {
		Raw string `json:"raw"`
	} `json:"date"`
	VerifiedPurchase bool `json:"verified_purchase"`
}

type productResponse struct {
	RequestInfo requestInfo     `json:"request_info"`
	Product     upstreamProduct `json:"product"`
}

type searchResponse struct {
	RequestInfo   requestInfo          `json:"request_info"`
	SearchResults []upstreamSearchItem `json:"search_results"`
	Pagination    struct {
		TotalResults int `json:"total_results"`
	} `json:"pagination"`
}

type categoryResponse struct {
	RequestInfo     requestInfo          `json:"request_info"`
	CategoryResults []upstreamSearchItem `json:"category_results"`
}

type dealsResponse struct {
	RequestInfo  requestInfo    `json:"request_info"`
	DealsResults []upstreamDeal `json:"deals_results"`
}

type reviewsResponse struct {
	RequestInfo requestInfo      `json:"request_info"`
	Reviews     []upstreamReview `json:"reviews"`
}
