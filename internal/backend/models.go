package backend

import "time"

// Scale is an event's visibility.
type Scale string

const (
	ScalePublic  Scale = "public"
	ScalePrivate Scale = "private"
)

// Response is a guest's attendance answer.
type Response string

const (
	ResponseGoing    Response = "going"
	ResponseNotGoing Response = "not-going"
)

type Event struct {
	ID           string     `json:"_id"`
	Name         string     `json:"name"`
	About        string     `json:"about"`
	Location     string     `json:"location"`
	Venue        string     `json:"venue"`
	Capacity     int        `json:"capacity"`
	Scale        Scale      `json:"scale"`
	ProfileImage string     `json:"profileImage,omitempty"`
	StartAt      *time.Time `json:"startAt,omitempty"`
	EndAt        *time.Time `json:"endAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// EventPayload is the full replacement body for create and update.
// Capacity is already a number here; callers coerce raw form input first.
type EventPayload struct {
	Name     string     `json:"name"`
	About    string     `json:"about"`
	Location string     `json:"location"`
	Venue    string     `json:"venue"`
	Capacity int        `json:"capacity"`
	Scale    Scale      `json:"scale"`
	StartAt  *time.Time `json:"startAt,omitempty"`
	EndAt    *time.Time `json:"endAt,omitempty"`

	// Image is sent as a multipart part when set.
	Image *File `json:"-"`
}

type RSVP struct {
	ID        string    `json:"_id"`
	EventID   string    `json:"eventId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Response  Response  `json:"response"`
	CreatedAt time.Time `json:"createdAt"`
}

type RSVPPayload struct {
	EventID  string   `json:"eventId"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone"`
	Response Response `json:"response"`
}

// Image is a gallery entry as stored by the backend's image host.
type Image struct {
	ID         string    `json:"_id"`
	URL        string    `json:"cloudinary_url"`
	Filename   string    `json:"filename"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// SearchResult is one ranked match of a similarity search: the matched image
// record with its score alongside.
type SearchResult struct {
	Image
	Similarity float64 `json:"similarity"`
}

// File is an uploaded file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Result is the backend's mutation envelope.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
