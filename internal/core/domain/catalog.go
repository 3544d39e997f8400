package domain

// Locale selects which display variant of catalog and step text is used.
// It never affects control flow.
type Locale int

const (
	LocaleVietnamese Locale = iota
	LocaleEnglish
)

// String returns the BCP 47 base language of the locale.
func (l Locale) String() string {
	if l == LocaleEnglish {
		return "en"
	}
	return "vi"
}

// ParseLocale maps "en" to English and everything else to Vietnamese.
func ParseLocale(s string) Locale {
	if s == "en" {
		return LocaleEnglish
	}
	return LocaleVietnamese
}

// Text holds the Vietnamese and English variants of a display string.
type Text struct {
	Vi string `json:"vi"`
	En string `json:"en"`
}

// In returns the variant for the given locale.
func (t Text) In(l Locale) string {
	if l == LocaleEnglish {
		return t.En
	}
	return t.Vi
}

// Ticket type identifiers.
const (
	TicketSingleTrip = "single-trip"
	TicketDaily      = "daily"
	TicketThreeDay   = "3-day"
	TicketMonthly    = "monthly"
)

// TicketType is an immutable catalog entry. Price is in whole VND.
type TicketType struct {
	ID          string `json:"id"`
	Name        Text   `json:"name"`
	Price       int64  `json:"price"`
	Description Text   `json:"description"`
}

// Station is a stop on Metro Line 1. Catalog order follows the line.
type Station struct {
	ID   string `json:"id"`
	Name Text   `json:"name"`
}

// PaymentMethod is a selectable settlement channel.
type PaymentMethod struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind"` // "card" | "qr"
}

var ticketTypes = []TicketType{
	{
		ID:    TicketSingleTrip,
		Name:  Text{Vi: "Vé một lượt", En: "Single Trip"},
		Price: 15000,
		Description: Text{
			Vi: "Sử dụng cho một lượt đi từ ga xuất phát đến ga đích",
			En: "Valid for a single journey from origin to destination station",
		},
	},
	{
		ID:    TicketDaily,
		Name:  Text{Vi: "Vé ngày", En: "Daily Pass"},
		Price: 40000,
		Description: Text{
			Vi: "Không giới hạn số lượt đi trong ngày",
			En: "Unlimited rides for one day",
		},
	},
	{
		ID:    TicketThreeDay,
		Name:  Text{Vi: "Vé 3 ngày", En: "3-Day Pass"},
		Price: 90000,
		Description: Text{
			Vi: "Không giới hạn số lượt đi trong 3 ngày liên tiếp",
			En: "Unlimited rides for three consecutive days",
		},
	},
	{
		ID:    TicketMonthly,
		Name:  Text{Vi: "Vé tháng", En: "Monthly Pass"},
		Price: 300000,
		Description: Text{
			Vi: "Không giới hạn số lượt đi trong 30 ngày",
			En: "Unlimited rides for 30 days",
		},
	},
}

var stations = []Station{
	{ID: "ben-thanh", Name: Text{Vi: "Bến Thành", En: "Ben Thanh"}},
	{ID: "ba-son", Name: Text{Vi: "Ba Son", En: "Ba Son"}},
	{ID: "van-thanh", Name: Text{Vi: "Văn Thánh", En: "Van Thanh"}},
	{ID: "tan-cang", Name: Text{Vi: "Tân Cảng", En: "Tan Cang"}},
	{ID: "thao-dien", Name: Text{Vi: "Thảo Điền", En: "Thao Dien"}},
	{ID: "an-phu", Name: Text{Vi: "An Phú", En: "An Phu"}},
	{ID: "rach-chiec", Name: Text{Vi: "Rạch Chiếc", En: "Rach Chiec"}},
	{ID: "phuoc-long", Name: Text{Vi: "Phước Long", En: "Phuoc Long"}},
	{ID: "binh-thai", Name: Text{Vi: "Bình Thái", En: "Binh Thai"}},
	{ID: "thu-duc", Name: Text{Vi: "Thủ Đức", En: "Thu Duc"}},
	{ID: "high-tech-park", Name: Text{Vi: "Khu Công Nghệ Cao", En: "High Tech Park"}},
	{ID: "suoi-tien", Name: Text{Vi: "Suối Tiên", En: "Suoi Tien"}},
	{ID: "suoi-tien-terminal", Name: Text{Vi: "Bến xe Suối Tiên", En: "Suoi Tien Terminal"}},
	{ID: "depot", Name: Text{Vi: "Depot", En: "Depot"}},
}

var paymentMethods = []PaymentMethod{
	{ID: "napas", Name: "Napas", Kind: "card"},
	{ID: "visa", Name: "Visa", Kind: "card"},
	{ID: "momo", Name: "MoMo", Kind: "qr"},
}

// TicketTypes returns a copy of the ticket catalog.
func TicketTypes() []TicketType {
	return append([]TicketType(nil), ticketTypes...)
}

// Stations returns a copy of the station catalog in line order.
func Stations() []Station {
	return append([]Station(nil), stations...)
}

// PaymentMethods returns a copy of the payment method catalog.
func PaymentMethods() []PaymentMethod {
	return append([]PaymentMethod(nil), paymentMethods...)
}

// LookupTicketType finds a ticket type by id.
func LookupTicketType(id string) (TicketType, bool) {
	for _, t := range ticketTypes {
		if t.ID == id {
			return t, true
		}
	}
	return TicketType{}, false
}

// LookupStation finds a station by id.
func LookupStation(id string) (Station, bool) {
	for _, s := range stations {
		if s.ID == id {
			return s, true
		}
	}
	return Station{}, false
}

// LookupPaymentMethod finds a payment method by id.
func LookupPaymentMethod(id string) (PaymentMethod, bool) {
	for _, m := range paymentMethods {
		if m.ID == id {
			return m, true
		}
	}
	return PaymentMethod{}, false
}
