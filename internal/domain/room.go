package domain

type Equipment struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Room struct {
	ID           int64       `json:"id"`
	BuildingID   int64       `json:"building_id"`
	BuildingName string      `json:"building_name"`
	RoomNumber   string      `json:"room_number"`
	Capacity     int         `json:"capacity"`
	PriceCents   int64       `json:"price_cents"`
	Description  string      `json:"description"`
	Equipment    []Equipment `json:"equipment"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
