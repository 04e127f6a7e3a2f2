package accel

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Register", func() {
	It("should keep only the bits of the declared width", func() {
		Expect(RegLearningRate.Truncate(0xabcd1234)).To(Equal(uint32(0x1234)))
		Expect(RegBatchItems.Truncate(0xffff)).To(Equal(uint32(0xffff)))
		Expect(RegWeightDecayLambda.Truncate(0x10000)).To(BeZero())
	})

	It("should parse names", func() {
		r, err := ParseRegister("learning_rate")
		Expect(err).NotTo(HaveOccurred())
		Expect(r).To(Equal(RegLearningRate))

		_, err = ParseRegister("nope")
		Expect(err).To(HaveOccurred())
	})

	It("should panic on unknown registers", func() {
		Expect(Register(42).Valid()).To(BeFalse())
		Expect(func() { Register(42).Width() }).To(Panic())
	})
})

var _ = Describe("ID", func() {
	It("should pack and unpack the fields", func() {
		id := MakeID(3, 4, 8, 16)

		Expect(id.Version()).To(Equal(3))
		Expect(id.CacheEntries()).To(Equal(4))
		Expect(id.NumPEs()).To(Equal(8))
		Expect(id.NumTIDs()).To(Equal(16))
		Expect(id.String()).To(Equal("version 3, 16 TIDs, 8 PEs, 4 cache entries"))
	})
})
