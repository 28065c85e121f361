package srp

import (
	"crypto/sha256"
	"math/big"
	"strings"
)

// group2048Hex is the 2048-bit MODP group prime from RFC 3526, section 3.
// Every deployed client pins the same (N, g) pair, so the group is a
// compile-time constant rather than configuration. Changing it would
// invalidate every stored verifier.
const group2048Hex = `
FFFFFFFF FFFFFFFF C90FDAA2 2168C234 C4C6628B 80DC1CD1 29024E08 8A67CC74
020BBEA6 3B139B22 514A0879 8E3404DD EF9519B3 CD3A431B 302B0A6D F25F1437
4FE1356D 6D51C245 E485B576 625E7EC6 F44C42E9 A637ED6B 0BFF5CB6 F406B7ED
EE386BFB 5A899FA5 AE9F2411 7C4B1FE6 49286651 ECE45B3D C2007CB8 A163BF05
98DA4836 1C55D39A 69163FA8 FD24CF5F 83655D23 DCA3AD96 1C62F356 208552BB
9ED52907 7096966D 670C354E 4ABC9804 F1746C08 CA18217C 32905E46 2E36CE3B
E39E772C 180E8603 9B2783A2 EC07A28F B5C55DF0 6F4C52C9 DE2BCBF6 95581718
3995497C EA956AE5 15D22618 98FA0510 15728E5A 8AACAA68 FFFFFFFF FFFFFFFF
`

var (
	// groupN is the safe prime of the SRP group.
	groupN *big.Int

	// groupG is the generator.
	groupG = big.NewInt(2)

	// multiplierK is the SRP-6a multiplier k = H(PAD(N), PAD(g)).
	multiplierK *big.Int

	// groupByteLen is the byte length of N. Operands are left-padded to this
	// width before hashing so that hash inputs have a canonical encoding.
	groupByteLen int
)

func init() {
	hexStr := strings.NewReplacer(" ", "", "\n", "").Replace(group2048Hex)
	n, ok := new(big.Int).SetString(hexStr, 16)
	if !ok {
		panic("srp: invalid group prime constant")
	}
	groupN = n
	groupByteLen = (groupN.BitLen() + 7) / 8

	h := sha256.New()
	h.Write(pad(groupN))
	h.Write(pad(groupG))
	multiplierK = new(big.Int).SetBytes(h.Sum(nil))
}

// pad left-pads the big-endian encoding of v to the byte length of N.
func pad(v *big.Int) []byte {
	b := v.Bytes()
	if len(b) >= groupByteLen {
		return b
	}
	out := make([]byte, groupByteLen)
	copy(out[groupByteLen-len(b):], b)
	return out
}
