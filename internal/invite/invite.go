// Package invite encodes a user's contact card as a link and QR code so
// another crew member can add them.
package invite

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/matheus3301/fleetchat/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// Scheme prefixes every invite link.
const Scheme = "fleetchat"

// ErrNotInvite is returned when parsing something that is not an invite link.
var ErrNotInvite = errors.New("not a fleetchat invite link")

// Link builds fleetchat://contact/<userID>?name=..&email=.. for c.
func Link(userID, name, email string) string {
	u := url.URL{Scheme: Scheme, Host: "contact", Path: "/" + userID}
	q := url.Values{}
	if name != "" {
		q.Set("name", name)
	}
	if email != "" {
		q.Set("email", email)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// Parse reads an invite link back into a contact record.
func Parse(link string) (model.Contact, error) {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return model.Contact{}, fmt.Errorf("parse invite: %w", err)
	}
	if u.Scheme != Scheme || u.Host != "contact" {
		return model.Contact{}, ErrNotInvite
	}
	id := strings.Trim(u.Path, "/")
	if id == "" {
		return model.Contact{}, fmt.Errorf("invite carries no user id: %w", ErrNotInvite)
	}
	q := u.Query()
	return model.Contact{ContactID: id, Name: q.Get("name"), Email: q.Get("email")}, nil
}

// Render draws content as a QR code with Unicode half blocks, two bitmap
// rows per terminal line.
func Render(content string) (string, error) {
	qr, err := qrcode.New(content, qrcode.Low)
	if err != nil {
		return "", fmt.Errorf("encode qr: %w", err)
	}
	qr.DisableBorder = false

	bitmap := qr.Bitmap()
	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		sb.WriteString("  ")
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█') // █
			case top:
				sb.WriteRune('▀') // ▀
			case bot:
				sb.WriteRune('▄') // ▄
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String(), nil
}

// WritePNG writes content as a size×size PNG QR code.
func WritePNG(content, path string, size int) error {
	if size <= 0 {
		size = 256
	}
	if err := qrcode.WriteFile(content, qrcode.Medium, size, path); err != nil {
		return fmt.Errorf("write qr png: %w", err)
	}
	return nil
}
