// internal/discovery/usb/database.go
package usb

import (
	"sync"

	"github.com/google/gousb"
)

// BrotherVendorID is the USB vendor id of Brother Industries
const BrotherVendorID gousb.ID = 0x04F9

// ProductInfo describes a known printer product
type ProductInfo struct {
	Model      string
	Confidence float64
}

// DeviceDatabase maps Brother product ids onto catalog model names
type DeviceDatabase struct {
	products map[gousb.ID]*ProductInfo
	mu       sync.RWMutex
}

// NewDeviceDatabase creates and initializes the device database
func NewDeviceDatabase() *DeviceDatabase {
	db := &DeviceDatabase{
		products: make(map[gousb.ID]*ProductInfo),
	}
	db.initializeDatabase()
	return db
}

func (db *DeviceDatabase) initializeDatabase() {
	known := map[gousb.ID]string{
		0x2015: "QL-500",
		0x2016: "QL-550",
		0x2027: "QL-560",
		0x2028: "QL-570",
		0x2029: "QL-580N",
		0x201B: "QL-650TD",
		0x2042: "QL-700",
		0x2043: "QL-710W",
		0x2044: "QL-720NW",
		0x209B: "QL-800",
		0x209C: "QL-810W",
		0x209D: "QL-820NWB",
		0x2020: "QL-1050",
		0x202A: "QL-1060N",
		0x20A7: "QL-1100",
		0x20A8: "QL-1110NWB",
		0x20AB: "QL-1115NWB",
		0x2061: "PT-P700",
		0x2062: "PT-P750W",
		0x2085: "PT-P900W",
		0x2086: "PT-P950NW",
	}
	for pid, name := range known {
		db.products[pid] = &ProductInfo{Model: name, Confidence: 0.95}
	}
}

// IsKnownVendor reports whether the vendor id belongs to Brother
func (db *DeviceDatabase) IsKnownVendor(vendorID gousb.ID) bool {
	return vendorID == BrotherVendorID
}

// GetProductInfo returns the product entry, or nil when unknown
func (db *DeviceDatabase) GetProductInfo(productID gousb.ID) *ProductInfo {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.products[productID]
}

// AddProduct registers an extra product id
func (db *DeviceDatabase) AddProduct(productID gousb.ID, info *ProductInfo) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.products[productID] = info
}

// GetTotalProductCount returns the number of known products
func (db *DeviceDatabase) GetTotalProductCount() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.products)
}
