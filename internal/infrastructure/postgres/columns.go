package postgres

// Updatable column names. Partial updates may only touch these.
const (
	colName               = "name"
	colPhoneNumber        = "phone_number"
	colCategory           = "category"
	colPrice              = "price"
	colStatus             = "status"
	colFeatures           = "features"
	colDetails            = "details"
	colImageURL           = "image_url"
	colLongitude          = "longitude"
	colLatitude           = "latitude"
	colAddress            = "address"
	colIsActive           = "is_active"
	colRegistrationNumber = "registration_number"
	colBrand              = "brand"
	colModel              = "model"
	colWorkshopID         = "workshop_id"
)
