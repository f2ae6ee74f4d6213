package images

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var fixedTime = time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

func millis(n int) time.Duration { return time.Duration(n) * time.Millisecond }

func TestBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Tonkotsu Bowl.PNG", "Tonkotsu Bowl"},
		{"ราเมน.jpg", "ราเมน"},
		{"ร้านอร่อย.png", "ร้านอร่อย"},
		{"IMG_0042.HEIC.jpg", "IMG_0042"},
		{`C:\Users\me\Pictures\counter.jpg`, "counter"},
		{"../../etc/passwd", "passwd"},
		{"tab\there\x00.png", "tabhere"},
		{"cafe\u0301.jpg", "caf\u00e9"},
		{".hidden", "photo"},
		{"   .jpg", "photo"},
		{"", "photo"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, BaseName(tt.in))
		})
	}
}

func TestBaseName_Truncates(t *testing.T) {
	long := ""
	for range 100 {
		long += "ก"
	}
	assert.Len(t, []rune(BaseName(long+".jpg")), maxBaseNameRunes)
}

func TestObjectName(t *testing.T) {
	assert.Equal(t, "restaurants/1792238400000-Tonkotsu Bowl.webp", ObjectName(fixedTime, "Tonkotsu Bowl.PNG"))
	assert.Equal(t, "restaurants/1792238400000-ราเมน.webp", ObjectName(fixedTime, "ราเมน.jpg"))
}
