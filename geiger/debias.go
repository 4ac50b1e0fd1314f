package geiger

// DebiasMask is the fixed alternating pattern XORed into every completed
// raw byte. Inverting every other comparison cancels any systematic skew
// caused by the average pulse interval drifting over long timescales, for
// example as the source decays. The transform redistributes bias without
// adding entropy.
const DebiasMask byte = 0xAA

// Debias applies the fixed drift correction to a raw byte. It is an
// involution: Debias(Debias(b)) == b.
func Debias(b byte) byte {
	return b ^ DebiasMask
}
