package tickets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"context"

	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"festival-tickets/internal/models"
)

// Issuer mints one ticket per ordered unit. Each ticket carries an
// AES-encrypted QR payload so gate scanners can verify it offline.
type Issuer struct {
	secret []byte
}

func NewIssuer(secret string) *Issuer {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &Issuer{secret: hashed[:]}
}

type qrPayload struct {
	TicketID     string    `json:"ticket_id"`
	OrderID      string    `json:"order_id"`
	TicketTypeID string    `json:"ticket_type_id"`
	OptionID     string    `json:"option_id,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// IssueTickets generates artifacts for every unit of every line item. The
// caller is responsible for ensuring the order is paid before invoking this.
func (i *Issuer) IssueTickets(ctx context.Context, order *models.B2BOrder) ([]models.TicketArtifact, error) {
	now := time.Now()
	var artifacts []models.TicketArtifact
	for _, item := range order.Items {
		for n := 0; n < item.Quantity; n++ {
			ticketID := uuid.NewString()
			png, err := i.encryptedQR(qrPayload{
				TicketID:     ticketID,
				OrderID:      order.ID,
				TicketTypeID: item.TicketTypeID,
				OptionID:     item.OptionID,
				IssuedAt:     now,
			})
			if err != nil {
				return nil, fmt.Errorf("generate QR for ticket %s: %w", ticketID, err)
			}
			artifacts = append(artifacts, models.TicketArtifact{
				TicketID:     ticketID,
				OrderID:      order.ID,
				TicketTypeID: item.TicketTypeID,
				OptionID:     item.OptionID,
				QRCode:       png,
				IssuedAt:     now,
			})
		}
	}
	return artifacts, nil
}

func (i *Issuer) encryptedQR(payload qrPayload) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, i.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data []byte, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]

	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
