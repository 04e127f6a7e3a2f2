package ant_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/xfiles/ant"
)

var _ = Describe("AttachFile", func() {
	var (
		table *ant.Table
		dir   string
	)

	BeforeEach(func() {
		var err error
		table, err = ant.NewTable(1, 2)
		Expect(err).NotTo(HaveOccurred())

		dir, err = os.MkdirTemp("", "ant-attach")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
	})

	writeFile := func(name string, data []byte) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, data, 0o644)).To(Succeed())
		return path
	}

	It("should attach the words stored in the file", func() {
		words := []ant.Word{0xdeadbeef, 1, 0xffffffffffffffff}
		path := writeFile("net.bin", ant.EncodeWords(words))

		nnid, err := table.AttachFile(0, path)
		Expect(err).NotTo(HaveOccurred())

		entry, err := table.Lookup(0, nnid)
		Expect(err).NotTo(HaveOccurred())
		Expect(entry.Config.Words()).To(Equal(words))
	})

	It("should zero pad a trailing partial word", func() {
		path := writeFile("odd.bin", []byte{1, 2, 3, 4, 5, 6, 7, 8, 9})

		nnid, err := table.AttachFile(0, path)
		Expect(err).NotTo(HaveOccurred())

		entry, _ := table.Lookup(0, nnid)
		Expect(entry.Config.Words()).To(Equal([]ant.Word{0x0807060504030201, 9}))
	})

	It("should report missing files as IO errors", func() {
		_, err := table.AttachFile(0, filepath.Join(dir, "missing.bin"))

		Expect(err).To(MatchError(ant.ErrIO))
		Expect(err).To(MatchError(os.ErrNotExist))
	})

	It("should report empty files as IO errors", func() {
		path := writeFile("empty.bin", nil)

		_, err := table.AttachFile(0, path)

		Expect(err).To(MatchError(ant.ErrIO))
	})

	It("should check the ASID before reading the file", func() {
		_, err := table.AttachFile(3, filepath.Join(dir, "missing.bin"))

		Expect(err).To(MatchError(ant.ErrInvalidASID))
	})

	It("should check the capacity before reading the file", func() {
		_, _ = table.AttachGarbage(0)
		_, _ = table.AttachGarbage(0)

		_, err := table.AttachFile(0, filepath.Join(dir, "missing.bin"))

		Expect(err).To(MatchError(ant.ErrCapacity))
	})
})
