package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPhotoContentType(t *testing.T) {
	cases := map[string]string{
		"images/aa/aa.jpg": "image/jpeg",
		"images/aa/aa.png": "image/png",
		"images/aa/aa.gif": "image/gif",
		"images/aa/aa":     "image/jpeg",
	}
	for path, want := range cases {
		assert.Equal(t, want, Photo{Path: path}.ContentType(), path)
	}
}
