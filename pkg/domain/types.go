package domain

// Document is an open JSON object: values are strings, numbers,
// booleans, arrays, or nested Documents as decoded by encoding/json.
// Used for the government registry payload and the free-form rows the
// workshop UI attaches to repairs.
type Document = map[string]any

// PhoneBookEntry is a named phone number attached to a customer or supplier.
type PhoneBookEntry struct {
	Name  string `json:"name" bson:"name"`
	Phone string `json:"phone" bson:"phone"`
}

// Car is keyed by its license plate in all lookups; the surrogate id is
// assigned at creation. GovernmentData stays nil until enrichment runs
// and finds the plate in the registry.
type Car struct {
	ID                 string   `json:"_id" bson:"_id"`
	LicensePlateNumber string   `json:"license_plate_number" bson:"license_plate_number"`
	Code               string   `json:"code,omitempty" bson:"code,omitempty"`
	GovernmentData     Document `json:"government_data,omitempty" bson:"government_data,omitempty"`
}

// CarKind is the derived (name, degem, shana) view over enrichment data.
type CarKind struct {
	Name  string `json:"name" bson:"name"`
	Degem string `json:"degem" bson:"degem"`
	Shana string `json:"shana" bson:"shana"`
}

type Customer struct {
	ID          string           `json:"_id" bson:"_id"`
	Cars        []string         `json:"cars" bson:"cars"`
	Name        string           `json:"name" bson:"name"`
	PhoneNumber string           `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Email       string           `json:"email,omitempty" bson:"email,omitempty"`
	Address     string           `json:"address,omitempty" bson:"address,omitempty"`
	Note        string           `json:"note,omitempty" bson:"note,omitempty"`
	PhoneBook   []PhoneBookEntry `json:"phone_book,omitempty" bson:"phone_book,omitempty"`
}

type StorageItem struct {
	ID               string   `json:"_id" bson:"_id"`
	Barcode          string   `json:"barcode,omitempty" bson:"barcode,omitempty"`
	Name             string   `json:"name" bson:"name"`
	Category         string   `json:"category" bson:"category"`
	Sub              []string `json:"sub,omitempty" bson:"sub,omitempty"`
	Supplier         string   `json:"supplier,omitempty" bson:"supplier,omitempty"`
	Notes            string   `json:"notes,omitempty" bson:"notes,omitempty"`
	AmountInStock    int      `json:"amount_in_stock" bson:"amount_in_stock"`
	MaxAmountInStock int      `json:"max_amount_in_stock" bson:"max_amount_in_stock"`
	CarTypes         []string `json:"car_types,omitempty" bson:"car_types,omitempty"`
	Location         string   `json:"location,omitempty" bson:"location,omitempty"`
	PriceCost        int      `json:"price_cost" bson:"price_cost"`
	PriceSell        int      `json:"price_sell" bson:"price_sell"`
}

type UsedItem struct {
	ID            string   `json:"_id" bson:"_id"`
	Name          string   `json:"name" bson:"name"`
	Category      string   `json:"category" bson:"category"`
	Sub           string   `json:"sub,omitempty" bson:"sub,omitempty"`
	Notes         string   `json:"notes,omitempty" bson:"notes,omitempty"`
	AmountInStock int      `json:"amount_in_stock" bson:"amount_in_stock"`
	CarTypes      []string `json:"car_types,omitempty" bson:"car_types,omitempty"`
	Location      string   `json:"location,omitempty" bson:"location,omitempty"`
}

type Tool struct {
	ID       string   `json:"_id" bson:"_id"`
	Name     string   `json:"name" bson:"name"`
	Category string   `json:"category" bson:"category"`
	Sub      []string `json:"sub,omitempty" bson:"sub,omitempty"`
	Notes    string   `json:"notes,omitempty" bson:"notes,omitempty"`
	CarTypes []string `json:"car_types,omitempty" bson:"car_types,omitempty"`
	Location string   `json:"location,omitempty" bson:"location,omitempty"`
}

type Supplier struct {
	ID           string           `json:"_id" bson:"_id"`
	Name         string           `json:"name" bson:"name"`
	PhoneNumber  string           `json:"phone_number,omitempty" bson:"phone_number,omitempty"`
	Email        string           `json:"email,omitempty" bson:"email,omitempty"`
	Address      string           `json:"address,omitempty" bson:"address,omitempty"`
	Note         string           `json:"note,omitempty" bson:"note,omitempty"`
	Payment      string           `json:"payment,omitempty" bson:"payment,omitempty"`
	PhoneBook    []PhoneBookEntry `json:"phone_book,omitempty" bson:"phone_book,omitempty"`
	StorageTypes []string         `json:"storage_types,omitempty" bson:"storage_types,omitempty"`
}

// Repair is an open workshop job. Attachments holds object-store keys
// of photos/scans uploaded against the job.
type Repair struct {
	ID                 string     `json:"_id" bson:"_id"`
	LicensePlateNumber string     `json:"license_plate_number" bson:"license_plate_number"`
	AreaID             string     `json:"area_id" bson:"area_id"`
	Tipul              []Document `json:"tipul,omitempty" bson:"tipul,omitempty"`
	TimeStampStart     string     `json:"time_stamp_start,omitempty" bson:"time_stamp_start,omitempty"`
	TimeStampEnd       string     `json:"time_stamp_end,omitempty" bson:"time_stamp_end,omitempty"`
	Note               string     `json:"note,omitempty" bson:"note,omitempty"`
	Rows               []Document `json:"rows,omitempty" bson:"rows,omitempty"`
	Attachments        []string   `json:"attachments,omitempty" bson:"attachments,omitempty"`
}

// RepairFinish is the closed form of a repair.
type RepairFinish struct {
	ID                 string     `json:"_id" bson:"_id"`
	LicensePlateNumber string     `json:"license_plate_number" bson:"license_plate_number"`
	Area               Document   `json:"area,omitempty" bson:"area,omitempty"`
	Tipul              []Document `json:"tipul,omitempty" bson:"tipul,omitempty"`
	TimeStampStart     string     `json:"time_stamp_start,omitempty" bson:"time_stamp_start,omitempty"`
	TimeStampEnd       string     `json:"time_stamp_end,omitempty" bson:"time_stamp_end,omitempty"`
	Note               string     `json:"note,omitempty" bson:"note,omitempty"`
	Rows               []Document `json:"rows,omitempty" bson:"rows,omitempty"`
	Products           []Document `json:"products,omitempty" bson:"products,omitempty"`
	Car                Document   `json:"car,omitempty" bson:"car,omitempty"`
	Customer           Document   `json:"customer,omitempty" bson:"customer,omitempty"`
	Total              float64    `json:"total" bson:"total"`
	Kilometer          int        `json:"kilometer" bson:"kilometer"`
}

// Tipul is a maintenance operation definition.
type Tipul struct {
	ID           string   `json:"_id" bson:"_id"`
	Name         string   `json:"name" bson:"name"`
	StorageTypes []string `json:"storage_types,omitempty" bson:"storage_types,omitempty"`
	CheckList    []string `json:"check_list,omitempty" bson:"check_list,omitempty"`
}

// TipulGroup is a named, priced bundle of maintenance operations.
type TipulGroup struct {
	ID        string   `json:"_id" bson:"_id"`
	Name      string   `json:"name" bson:"name"`
	Tipulim   []string `json:"tipulim,omitempty" bson:"tipulim,omitempty"`
	CheckList []string `json:"check_list,omitempty" bson:"check_list,omitempty"`
	Price     float64  `json:"price" bson:"price"`
}

type Area struct {
	ID     string `json:"_id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Number int    `json:"number" bson:"number"`
	Multi  bool   `json:"multi" bson:"multi"`
}

// Camera is a single plate sighting reported by an ANPR camera.
type Camera struct {
	ID                 string `json:"_id" bson:"_id"`
	LicensePlateNumber string `json:"license_plate_number" bson:"license_plate_number"`
	TimeStamp          string `json:"time_stamp" bson:"time_stamp"`
}

type StorageCategory struct {
	ID     string `json:"_id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Number int    `json:"number" bson:"number"`
}

type ToolCategory struct {
	ID     string `json:"_id" bson:"_id"`
	Name   string `json:"name" bson:"name"`
	Number int    `json:"number" bson:"number"`
}

// ErrorCode maps an OBD code to its definition. Codes are stored
// lowercased so lookups are case-insensitive.
type ErrorCode struct {
	ID         string   `json:"_id" bson:"_id"`
	Code       string   `json:"code" bson:"code"`
	Definition string   `json:"definition" bson:"definition"`
	Cause      []string `json:"cause,omitempty" bson:"cause,omitempty"`
}

func (c Car) EntityID() string             { return c.ID }
func (c Customer) EntityID() string        { return c.ID }
func (s StorageItem) EntityID() string     { return s.ID }
func (u UsedItem) EntityID() string        { return u.ID }
func (t Tool) EntityID() string            { return t.ID }
func (s Supplier) EntityID() string        { return s.ID }
func (r Repair) EntityID() string          { return r.ID }
func (r RepairFinish) EntityID() string    { return r.ID }
func (t Tipul) EntityID() string           { return t.ID }
func (g TipulGroup) EntityID() string      { return g.ID }
func (a Area) EntityID() string            { return a.ID }
func (c Camera) EntityID() string          { return c.ID }
func (s StorageCategory) EntityID() string { return s.ID }
func (t ToolCategory) EntityID() string    { return t.ID }
func (e ErrorCode) EntityID() string       { return e.ID }

// Entity is any stored document with a surrogate id.
type Entity interface {
	EntityID() string
}
