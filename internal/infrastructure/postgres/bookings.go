package postgres

import (
	"context"

	"github.com/go-carservice-api/internal/domain"
)

const bookingColumns = `id, customer_id, car_id, workshop_id, service_id, status, booking_date,
	pickup_address, pickup_timing, longitude, latitude, total_amount, created_at, updated_at`

type BookingRepo struct {
	db DBTX
}

func NewBookingRepo(db DBTX) *BookingRepo {
	return &BookingRepo{db: db}
}

func bookingDest(b *domain.Booking) []any {
	return []any{&b.ID, &b.CustomerID, &b.CarID, &b.WorkshopID, &b.ServiceID, &b.Status, &b.BookingDate,
		&b.PickupAddress, &b.PickupTiming, &b.Longitude, &b.Latitude, &b.TotalAmount, &b.CreatedAt, &b.UpdatedAt}
}

func scanBooking(row interface{ Scan(...any) error }) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(bookingDest(&b)...); err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	query := `INSERT INTO bookings (id, customer_id, car_id, workshop_id, service_id, status, booking_date,
			pickup_address, pickup_timing, longitude, latitude, total_amount)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + bookingColumns
	created, err := scanBooking(r.db.QueryRowContext(ctx, query,
		b.ID, b.CustomerID, b.CarID, b.WorkshopID, b.ServiceID, b.Status, b.BookingDate,
		b.PickupAddress, b.PickupTiming, b.Longitude, b.Latitude, b.TotalAmount))
	if err != nil {
		return nil, classify(err)
	}
	return created, nil
}

func (r *BookingRepo) Get(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id))
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

func (r *BookingRepo) Update(ctx context.Context, id string, req domain.UpdateBookingRequest) (*domain.Booking, error) {
	var set updateSet
	if req.Status != nil {
		set.add(colStatus, *req.Status)
	}
	if req.WorkshopID != nil {
		set.add(colWorkshopID, *req.WorkshopID)
	}
	q, err := buildUpdate("bookings", set, id, bookingColumns)
	if err != nil {
		return nil, err
	}
	b, err := scanBooking(r.db.QueryRowContext(ctx, q.SQL, q.Args...))
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

// ListDetailsByCustomer joins every booking of a customer with its customer,
// car, workshop and service rows.
func (r *BookingRepo) ListDetailsByCustomer(ctx context.Context, customerID string) ([]domain.BookingDetail, error) {
	query := `SELECT b.id, b.customer_id, b.car_id, b.workshop_id, b.service_id, b.status, b.booking_date,
			b.pickup_address, b.pickup_timing, b.longitude, b.latitude, b.total_amount, b.created_at, b.updated_at,
			cu.name, cu.phone_number, c.registration_number, c.brand, c.model,
			w.name, w.address, s.name, s.category, s.price
		FROM bookings b
		JOIN customers cu ON cu.id = b.customer_id
		JOIN cars c ON c.id = b.car_id
		JOIN services s ON s.id = b.service_id
		LEFT JOIN workshops w ON w.id = b.workshop_id
		WHERE b.customer_id = $1
		ORDER BY b.booking_date DESC, b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	out := []domain.BookingDetail{}
	for rows.Next() {
		var d domain.BookingDetail
		dest := append(bookingDest(&d.Booking),
			&d.CustomerName, &d.CustomerPhone, &d.RegistrationNumber, &d.CarBrand, &d.CarModel,
			&d.WorkshopName, &d.WorkshopAddress, &d.ServiceName, &d.ServiceCategory, &d.ServicePrice)
		if err := rows.Scan(dest...); err != nil {
			return nil, classify(err)
		}
		out = append(out, d)
	}
	return out, classify(rows.Err())
}

// CustomerIDsByService returns the customers whose booking documents embed the service.
func (r *BookingRepo) CustomerIDsByService(ctx context.Context, serviceID string) ([]string, error) {
	return r.customerIDs(ctx, `SELECT DISTINCT customer_id FROM bookings WHERE service_id = $1`, serviceID)
}

// CustomerIDsByWorkshop returns the customers whose booking documents embed the workshop.
func (r *BookingRepo) CustomerIDsByWorkshop(ctx context.Context, workshopID string) ([]string, error) {
	return r.customerIDs(ctx, `SELECT DISTINCT customer_id FROM bookings WHERE workshop_id = $1`, workshopID)
}

func (r *BookingRepo) customerIDs(ctx context.Context, query, id string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var cid string
		if err := rows.Scan(&cid); err != nil {
			return nil, classify(err)
		}
		out = append(out, cid)
	}
	return out, classify(rows.Err())
}
