package report

import (
	"fmt"

	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/fair-rice-portal/internal/model"
)

// QRCodeSize is the edge length in pixels of a family QR code.
const QRCodeSize = 256

// QRCodeContent is the text a family QR code carries.  The label comes
// first so a scanner that shows one line still identifies the family.
func QRCodeContent(f model.Family) string {
	return fmt.Sprintf("%s\nHead: %s\nContact: %s\nVillage: %s\nMembers: %d",
		f.UniqueFamilyID, f.HeadName, f.ContactNumber, f.VillageName, f.NumMembers)
}

// FamilyQRCode renders the family's QR code as a PNG.
func FamilyQRCode(f model.Family) ([]byte, error) {
	png, err := qrcode.Encode(QRCodeContent(f), qrcode.Medium, QRCodeSize)
	if err != nil {
		return nil, fmt.Errorf("encode qr code for %s: %w", f.UniqueFamilyID, err)
	}
	return png, nil
}
