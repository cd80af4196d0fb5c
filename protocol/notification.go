/*
File Name:  notification.go

Encoding of Notification (kind 0x05 handled by the caller): a length-prefixed
ASCII text payload. Sender-side emission is not mandated by the wire
protocol; this node's use of it is described in the root package.
*/

package protocol

import "io"

// MaxNotificationLen is the largest text payload a Notification can carry;
// the length prefix is a single byte.
const MaxNotificationLen = 255

// EncodeNotification builds a complete Notification message for text,
// truncating to MaxNotificationLen bytes if necessary.
func EncodeNotification(text string) []byte {
	data := []byte(text)
	if len(data) > MaxNotificationLen {
		data = data[:MaxNotificationLen]
	}

	buf := make([]byte, 2+len(data))
	buf[0] = byte(KindNotification)
	buf[1] = byte(len(data))
	copy(buf[2:], data)
	return buf
}

// DecodeNotification reads the length-prefixed payload of a Notification.
// The kind byte must already have been consumed by the caller.
func DecodeNotification(r io.Reader) (string, error) {
	var lenBuf [1]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return "", err
	}

	data := make([]byte, lenBuf[0])
	if _, err := io.ReadFull(r, data); err != nil {
		return "", err
	}
	return string(data), nil
}
