package services

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"log"
	"os"
	"time"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/resellerhub/resellerhub_backend/config"
	"github.com/resellerhub/resellerhub_backend/models"
	"github.com/resellerhub/resellerhub_backend/utils"
)

// DocumentService generates and stores payout documents for manually approved
// commissions
type DocumentService struct {
	DB *mongo.Client
}

func NewDocumentService(db *mongo.Client) *DocumentService {
	return &DocumentService{DB: db}
}

// GeneratePayoutDocument creates the payout record for an approved commission:
// a unique reference number plus a QR code image encoding the verification
// link, saved under uploads/documents. A QR rendering failure still produces
// the document record.
func (s *DocumentService) GeneratePayoutDocument(ctx context.Context, commission *models.Commission, approvedBy primitive.ObjectID) (*models.PayoutDocument, error) {
	referenceNumber := uuid.New().String()

	qrPath, err := s.renderQRCode(referenceNumber)
	if err != nil {
		log.Printf("Failed to render payout QR code for commission %s: %v", commission.ID.Hex(), err)
	}

	document := &models.PayoutDocument{
		ID:              primitive.NewObjectID(),
		CommissionID:    commission.ID,
		ResellerID:      commission.ResellerID,
		Amount:          commission.Amount,
		Period:          commission.Period,
		ReferenceNumber: referenceNumber,
		QRCodePath:      qrPath,
		GeneratedByID:   approvedBy,
		CreatedAt:       time.Now(),
	}

	collection := config.GetCollection(s.DB, "payoutDocuments")
	if _, err := collection.InsertOne(ctx, document); err != nil {
		return nil, fmt.Errorf("failed to save payout document: %w", err)
	}

	return document, nil
}

// renderQRCode encodes the document verification link as a PNG and saves it
// under uploads/documents
func (s *DocumentService) renderQRCode(referenceNumber string) (string, error) {
	portalURL := os.Getenv("PORTAL_URL")
	if portalURL == "" {
		portalURL = "https://portal.resellerhub.io"
	}
	content := fmt.Sprintf("%s/payouts/verify?ref=%s", portalURL, referenceNumber)

	qrCode, err := qr.Encode(content, qr.M, qr.Auto)
	if err != nil {
		return "", err
	}

	// Scale the QR code to a reasonable size (300x300 pixels)
	qrCode, err = barcode.Scale(qrCode, 300, 300)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qrCode); err != nil {
		return "", err
	}

	filename := fmt.Sprintf("payout-%s.png", referenceNumber)
	return utils.UploadFileToPath(buf.Bytes(), filename, "image", "documents")
}
