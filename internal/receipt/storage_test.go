package receipt

import (
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("LocalStorage", func() {
	var (
		tmpDir  string
		storage Storage
	)

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		var err error
		storage, err = NewLocalStorage(tmpDir)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Save", func() {
		It("writes the image and returns its path", func() {
			path, err := storage.Save("id-1.jpg", []byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())
			Expect(path).To(Equal("id-1.jpg"))
			Expect(filepath.Join(tmpDir, "id-1.jpg")).To(BeAnExistingFile())
		})
	})

	Describe("Get", func() {
		It("returns saved content", func() {
			_, err := storage.Save("id-1.jpg", []byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())

			data, err := storage.Get("id-1.jpg")
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal([]byte("jpeg bytes")))
		})

		It("fails for a missing image", func() {
			_, err := storage.Get("missing.jpg")
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("reading file"))
		})
	})

	Describe("Delete", func() {
		It("removes the image from disk", func() {
			_, err := storage.Save("id-1.jpg", []byte("jpeg bytes"))
			Expect(err).NotTo(HaveOccurred())

			Expect(storage.Delete("id-1.jpg")).To(Succeed())
			Expect(filepath.Join(tmpDir, "id-1.jpg")).NotTo(BeAnExistingFile())
		})

		It("fails for a missing image", func() {
			Expect(storage.Delete("missing.jpg")).NotTo(Succeed())
		})
	})
})
