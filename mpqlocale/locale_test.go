// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqlocale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseNamedCodes(t *testing.T) {
	id, err := Parse("enUS")
	require.NoError(t, err)
	require.Equal(t, uint16(0x0409), id)
}

func TestParseRawHex(t *testing.T) {
	id, err := Parse("0407")
	require.NoError(t, err)
	require.Equal(t, uint16(0x0407), id)
}

func TestParseUnknown(t *testing.T) {
	_, err := Parse("xxYY")
	require.ErrorIs(t, err, ErrUnknown)
}

func TestNameRoundTrip(t *testing.T) {
	require.Equal(t, "enUS", Name(0x0409))
	require.Equal(t, "0ABC", Name(0x0ABC))
}

func TestFallbackOrder(t *testing.T) {
	require.Equal(t, []uint16{Neutral}, FallbackOrder(Neutral))
	require.Equal(t, []uint16{0x0409, Neutral}, FallbackOrder(0x0409))
}
