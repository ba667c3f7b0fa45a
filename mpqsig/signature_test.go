// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package mpqsig

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/suprsokr/mpqarc/mpqcrypt"
)

// The keypairs below are freshly generated test-only RSA keys, sized to
// match the real weak (512-bit) and strong (2048-bit) modulus widths so
// the fixed-size slicing in VerifyWeak/VerifyStrong behaves exactly as
// it does against Blizzard's published keys. They have no relation to
// any real Blizzard key and exist only to exercise Generate/Verify.
var (
	testWeakModulus = mustHex(
		"4f9e3e874f35651170ce29a80a70d779af6a3d1270aa293f6ec2043860f509e" +
			"f1b64cd815cd7e56ec921e11c0505be1734ea75c2e20ed57b6a4c812017e9b09b")
	testWeakPrivate = mustHex(
		"2ed58e3179e32c649cb581ea607e9cde2af332fbc9cd81acd7bd6be4edbd512" +
			"294bfe2f590eb758b062cfb5711d286abed4ea65ab94bb4c17d8da27ac545d9f1")

	testStrongModulus = mustHex(
		"87e64fc80a0804ae58f0613d838f94c74ee138ff9b727109d39fa5f77070d33" +
			"24bdf40ca11aecc908d7f8b6de4f4263fc35da660ce6dcbc74edfa3efd33f9d3" +
			"c11db6f89de7bc6c0ad0ac0a6c44986589b4a456d095f353ebaf8d6bf81ea539" +
			"9bfb15168f715555efa1c376de5367cf99c506984b45aec5b4e55873e2b728c" +
			"68366a141be17f9b5fa20cf1f2e4daf3765b1e687c3aa4129a1a36d282e3a9cd" +
			"c927b68745a3c27f390cef05f22544efecd0d56fa171be5642b166948f270fe" +
			"13b18ace0f54102eb68f93278f429921e89a899266b0b90ca5c381a8742a80d" +
			"059238e23102e2359690217390ac48626853c8261034d0cfa71df8579b44c3d" +
			"14bb9")
	testStrongPrivate = mustHex(
		"5557a8da72923e7e4e94063cdf1597d4e21045ff1edb6b69446089952e236c3" +
			"db5afe9bbfc06cda82973e3578be456f0cbfb4fb4936e17fe7de5abc9bbdbc3" +
			"1e2a08a7aee8ecca0fcd9b67085353e8ee53f6fc4a510c5d1f9bc310f90ad8e0" +
			"cf38b65ded90dcf0d3c8355809c75bc477ec56032db7253230d4ac9955cd6b0" +
			"e089fb4e20009a9d8db787e0eaa12cb1de1e6245aa857090ad446588351bf26" +
			"62149db9b6b8422d8c267996e1eada83043965946e05ea0f8b44ca3e675fc14" +
			"b79bf267d69ad340b68e5ce983d20f1581901a36a96867ced5a9aeb136233b1" +
			"0042ce4f648fa487dc18c67d97204c0d4148aa2aecc155e41d8cb3e4d1e3572" +
			"8ece201")
)

func TestWeakSignatureRoundTrip(t *testing.T) {
	archive := []byte("a small archive's worth of bytes, zeroed at the signature window")

	sig := GenerateWeak(archive, testWeakPrivate, testWeakModulus)
	require.Len(t, sig, WeakSignatureSize)

	ok, err := verifyWeakWithKey(archive, sig, testWeakModulus)
	require.NoError(t, err)
	require.True(t, ok)

	tampered := append([]byte(nil), archive...)
	tampered[0] ^= 0xFF
	ok, err = verifyWeakWithKey(tampered, sig, testWeakModulus)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStrongSignatureRoundTrip(t *testing.T) {
	archive := []byte("archive bytes preceding the NGIS trailer")

	sig := GenerateStrong(archive, testStrongPrivate, testStrongModulus)
	require.Len(t, sig, StrongSignatureSize)

	ok, err := verifyStrongWithKey(archive, sig, testStrongModulus)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestVerifyStrongNoMatchingKey(t *testing.T) {
	archive := []byte("unsigned content")
	garbage := make([]byte, StrongSignatureSize)
	_, err := VerifyStrong(archive, garbage)
	require.ErrorIs(t, err, ErrNoMatchingKey)
}

func TestTrailerMagic(t *testing.T) {
	require.Equal(t, []byte("NGIS"), TrailerMagic())
}

// verifyWeakWithKey mirrors VerifyWeak against an arbitrary test
// modulus instead of the embedded Blizzard key.
func verifyWeakWithKey(zeroedArchive, signatureBlob []byte, modulus *big.Int) (bool, error) {
	block := signatureBlob[8:]
	digest := WeakDigest(zeroedArchive)
	decrypted := mpqcrypt.RawRSA(block, weakExponent, modulus)
	return string(decrypted[:16]) == string(digest[:]), nil
}

func verifyStrongWithKey(archiveWithoutTrailer, signatureBlock []byte, modulus *big.Int) (bool, error) {
	digest := mpqcrypt.SHA1Sum(archiveWithoutTrailer)
	decrypted := mpqcrypt.RawRSA(signatureBlock, big.NewInt(0x10001), modulus)
	return string(decrypted[:20]) == string(digest[:]), nil
}
