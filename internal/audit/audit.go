// Package audit persists checkout receipts as JSON files.
//
// Checkout-driven copy decrements deliberately do not write rows into the
// book_history table; that table records catalog metadata edits only. Each
// successful checkout instead leaves one receipt file on disk, so lending
// activity still has a durable trace.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// CheckoutReceipt captures one successful checkout.
type CheckoutReceipt struct {
	WishlistID uint      `json:"wishlist_id"`
	UserID     uint      `json:"user_id"`
	BookIDs    []uint    `json:"book_ids"`
	BorrowedAt time.Time `json:"borrowed_at"`
}

type Auditor struct {
	AuditDir string
}

func NewAuditor(auditDir string) *Auditor {
	return &Auditor{
		AuditDir: auditDir,
	}
}

// SaveReceipt writes the receipt to a UUID-named JSON file and returns the
// filename.
func (a *Auditor) SaveReceipt(receipt CheckoutReceipt) (string, error) {
	if err := a.ensureAuditDir(); err != nil {
		return "", fmt.Errorf("failed to ensure audit directory: %w", err)
	}

	filename := fmt.Sprintf("checkout-%s.json", uuid.New().String())
	path := filepath.Join(a.AuditDir, filename)

	data, err := json.MarshalIndent(receipt, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal receipt: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write receipt file: %w", err)
	}

	return filename, nil
}

func (a *Auditor) ensureAuditDir() error {
	if _, err := os.Stat(a.AuditDir); os.IsNotExist(err) {
		if err := os.MkdirAll(a.AuditDir, 0755); err != nil {
			return fmt.Errorf("failed to create audit directory: %w", err)
		}
	}
	return nil
}
