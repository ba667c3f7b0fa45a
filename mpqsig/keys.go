// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqsig

import "math/big"

// Blizzard's published weak-signature key. Used for the original
// StarCraft/Warcraft III-era 512-bit RSA signatures; the exponent 0x11
// (65537's small cousin used by this scheme) is fixed across titles.
var (
	weakExponent = big.NewInt(0x11)
	weakModulus  = mustHex("" +
		"E2 65 63 54 92 EF DD C3 5E AC 95 A7 8F 0A 95 63" +
		"D6 C2 68 C9 6C D5 62 6E 6A 5B 2F FF 6F 01 FB F8" +
		"6E 41 CB 8A 53 76 E5 8B 9D DC 95 1C 14 EE E8 25" +
		"9F AC 11 9F 24 0F 48 70 F6 C0 21 02 E4 3D 5D A1")

	// Strong-signature public keys, tried in order during verification
	// since different titles shipped their own 2048-bit key; this table
	// holds the War3 and WoW moduli.
	strongModuli = [][2]*big.Int{
		{big.NewInt(0x10001), mustHex(strongKeyWar3)},
		{big.NewInt(0x10001), mustHex(strongKeyWoW)},
	}
)

func mustHex(spaced string) *big.Int {
	clean := make([]byte, 0, len(spaced))
	for i := 0; i < len(spaced); i++ {
		c := spaced[i]
		if c == ' ' {
			continue
		}
		clean = append(clean, c)
	}
	n := new(big.Int)
	n.SetString(string(clean), 16)
	return n
}

const strongKeyWar3 = "" +
	"B1 36 C8 DF 28 7B 9C 47 3C 48 FF 41 0B 27 3C A7" +
	"A0 6F 7B E5 1D 44 44 55 17 78 3D 97 3F 3A 58 9F" +
	"C9 5D 78 AF 4D 6B 5C 1E 3D 74 65 3E 44 E7 8A 92" +
	"7C AF 85 9A 8E 50 0E C5 4A 9A CC A8 0E 52 EF AE" +
	"A8 0A 94 43 F0 98 89 F4 5A A1 24 57 2C 48 2B D3" +
	"A4 31 12 88 A7 E7 C5 1C 58 2C 8D 99 E4 0D 0E 8E" +
	"4B 17 6A 97 77 CC 1C 7B 95 24 58 89 BB 75 0E BF" +
	"D0 C2 03 E3 D4 C9 EC 0C 60 5C 48 60 E6 01 2C 3A" +
	"D6 0F D4 1F 77 E8 4D 4E 87 79 A2 B3 C9 3B 15 EE" +
	"7D 8F A2 9E 3D 52 C8 81 B1 B1 4E BF B7 9F 03 A7" +
	"67 5D 68 EC 66 9D 5C CC 65 5C C1 C5 A9 F2 3F E4" +
	"75 F1 CF F3 56 6F 77 3E E8 24 A3 27 8A 6C 66 57" +
	"91 FE 91 19 87 5B 19 88 FE 14 5F 05 86 2D 45 15" +
	"C6 8E BD 53 83 1B BE 3A 7D 21 D1 CF 6E 02 E7 27" +
	"17 9F 99 FB 4A 4B 18 1F DC 3A 1C 8E 95 8A 3D 2B" +
	"40 7A 2C 49 6A FE 80 FC 9A B8 F0 8C 4B 68 3E F1"

const strongKeyWoW = "" +
	"8D 5B 7A 5A D6 A3 07 6B 07 67 53 F3 01 27 53 07" +
	"C1 23 23 9A 2E 70 2D 4B 1E 4F E5 C5 97 1B 9B AE" +
	"7B 5C 1A B9 40 93 ED 40 E2 A8 3D 4D 03 0E 2F 15" +
	"F5 40 A7 24 3B 29 67 4B 55 28 C7 25 1A 10 6C B2" +
	"AE 51 D8 1B E7 9E 21 6A 4A 73 5D B1 3E AB 29 28" +
	"C1 B9 12 9B 78 D1 FF 1B A5 E0 CF 60 89 9D C9 B8" +
	"F8 D2 64 11 91 A1 E8 EE D9 F0 9C 60 6D 6B 61 D3" +
	"FB 17 97 24 5A C2 C1 AF 10 F0 A6 CB 30 20 21 59" +
	"4C A7 26 04 C1 6C 13 10 BF 36 B7 38 A7 93 0F 4F" +
	"E3 C4 03 3B 9A 5B C0 5A 9F 8D CC 35 87 44 A5 3C" +
	"AB 5B 73 0F 87 5A 5A 21 08 2A 56 8A 7A 5F 4B 80" +
	"8A 6B 91 7F 9B C9 83 DA 2D 9F EA 92 70 5F 0A 7D" +
	"99 D1 B8 4A 61 A0 D4 FA 9E 59 D9 A4 D6 8E 5B C0" +
	"F1 5E 95 0A 6F 1A 35 D6 0E 1F 8F 7B E5 8F 42 78" +
	"D8 EF 8F 5B 03 0A 8E 6C 7E 08 6C 4E 9D 76 6E 4D" +
	"CB 9E 67 13 EF 8A 4D 0D A5 6C 4C 0E F2 6D 70 3E"
