package cache

// Cache keys. Every key is a pure function of resource identity or query shape.

const (
	AllServicesKey       = "services"
	ServiceCategoriesKey = "service_categories"
	ActiveWorkshopsKey   = "workshops:all"
)

func ServiceKey(id string) string { return "service:" + id }

func ServicesByCategoryKey(category string) string { return "services_by_category:" + category }

func WorkshopKey(id string) string { return "workshop:" + id }

func CarKey(id string) string { return "car:" + id }

func CarsByCustomerKey(customerID string) string { return "cars_by_customer:" + customerID }

func BookingsByCustomerKey(customerID string) string { return "bookings_by_customer:" + customerID }

func ReviewsByServiceKey(serviceID string) string { return "reviews_by_service:" + serviceID }
