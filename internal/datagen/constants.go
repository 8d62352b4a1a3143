package datagen

import "time"

// Value ranges for generated records.
const (
	amountMin     = 1.0
	amountMax     = 1000.0
	centsPerUnit  = 100
	defaultRows   = 50
	defaultSeed   = 42
	fileMode      = 0o644
	dirMode       = 0o755
	dateLayout    = "2006-01-02"
	trueLabel     = "True"
	falseLabel    = "False"
	fraudFraction = 0.5
)

// Date range for generated transactions.
var (
	earliestDate = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
	latestDate   = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Header is the column layout of generated files.
var Header = []string{"Date", "Amount", "Location", "Store", "Fraudulent"}

var cities = []string{
	"Lake Amanda", "North Jeffrey", "Port Brianmouth", "East Kimberly", "Stevenland",
	"West Michelleside", "New Daniel", "South Laura", "Jonesborough", "Millerview",
	"Carterfurt", "Port Nicole", "Hernandezton", "Lake Christopher", "Smithhaven",
}

var stores = []string{
	"Johnson, Lee and Patel", "Rivera Group", "Smith LLC", "Garcia-Nguyen", "Wilson Inc",
	"Thompson PLC", "Brown, Clark and Lewis", "Martinez Ltd", "Anderson-Hall", "Young and Sons",
}
