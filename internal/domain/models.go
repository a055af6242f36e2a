package domain

import (
	"errors"
	"time"
)

// ErrNotFound is returned by stores when a bill or receipt does not exist.
// The message carries "404" so the list view classifies it as a not-found error.
var ErrNotFound = errors.New("Erreur 404: resource not found")

// ErrNoUser is returned when an employee operation runs without a stored
// user that has a recognised type and an email.
var ErrNoUser = errors.New("no employee in session")

// ErrReceiptRequired is returned when a bill is submitted without an accepted receipt.
var ErrReceiptRequired = errors.New("a receipt in jpg, jpeg or png format is required")

// BillStatus is the review state of a bill.
type BillStatus string

const (
	StatusPending  BillStatus = "pending"
	StatusAccepted BillStatus = "accepted"
	StatusRefused  BillStatus = "refused"
)

// Label returns the text shown to the user for the status.
func (s BillStatus) Label() string {
	switch s {
	case StatusPending:
		return "En attente"
	case StatusAccepted:
		return "Accepté"
	case StatusRefused:
		return "Refused"
	default:
		return string(s)
	}
}

// Valid reports whether s is one of the known statuses.
func (s BillStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRefused:
		return true
	}
	return false
}

// ExpenseTypes lists the options of the expense type select, in display order.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// Bill is one expense note submitted by an employee.
type Bill struct {
	ID           string
	Email        string
	Type         string
	Name         string
	Date         string // ISO yyyy-mm-dd, as entered in the form
	Amount       float64
	VAT          string
	Pct          int
	Commentary   string
	CommentAdmin string
	Status       BillStatus
	FileURL      string
	FileName     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Receipt is an uploaded receipt image.
type Receipt struct {
	Key         string
	Email       string
	FileName    string
	ContentType string
	Content     []byte
	CreatedAt   time.Time
}

// UploadResult is what the store hands back after a receipt upload.
// Key doubles as the id of the bill the receipt belongs to.
type UploadResult struct {
	Key      string
	FileURL  string
	FileName string
}
