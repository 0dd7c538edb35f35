package receipt

import (
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"
)

var _ = Describe("BoltStore", func() {
	var store *BoltStore

	BeforeEach(func() {
		var err error
		store, err = NewBoltStore(filepath.Join(GinkgoT().TempDir(), "test.db"))
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { store.Close() })
	})

	Describe("Read", func() {
		When("nothing has been written", func() {
			It("returns an empty list, not an error", func() {
				receipts, err := store.Read()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).To(BeEmpty())
			})
		})

		When("the stored blob is not valid JSON", func() {
			BeforeEach(func() {
				err := store.db.Update(func(tx *bbolt.Tx) error {
					return tx.Bucket([]byte(bucketName)).Put([]byte(listKey), []byte("{not json"))
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("swallows the corruption and returns an empty list", func() {
				receipts, err := store.Read()
				Expect(err).NotTo(HaveOccurred())
				Expect(receipts).To(BeEmpty())
			})
		})
	})

	Describe("Write", func() {
		It("round-trips a list with fields and order intact", func() {
			in := []Receipt{
				{ID: "a", VendorName: "Corner Grocery", TotalAmount: "10.00", Tax: "0.60", Category: "Groceries", Items: []string{"milk"}, Timestamp: 1000},
				{ID: "b", TotalAmount: "20.00", Timestamp: 2000},
				{ID: "c", Date: "2024-03-20", Timestamp: 3000},
			}
			Expect(store.Write(in)).To(Succeed())

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(Equal(in))
		})

		It("round-trips an empty list", func() {
			Expect(store.Write([]Receipt{})).To(Succeed())

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		})

		It("replaces the whole list on every write", func() {
			Expect(store.Write([]Receipt{{ID: "a", Timestamp: 1}, {ID: "b", Timestamp: 2}})).To(Succeed())
			Expect(store.Write([]Receipt{{ID: "c", Timestamp: 3}})).To(Succeed())

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(1))
			Expect(out[0].ID).To(Equal("c"))
		})
	})

	Describe("Update", func() {
		It("applies the mutation to the current list", func() {
			Expect(store.Write([]Receipt{{ID: "a", Timestamp: 1}})).To(Succeed())

			err := store.Update(func(receipts []Receipt) []Receipt {
				return append(receipts, Receipt{ID: "b", Timestamp: 2})
			})
			Expect(err).NotTo(HaveOccurred())

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(2))
			Expect(out[0].ID).To(Equal("a"))
			Expect(out[1].ID).To(Equal("b"))
		})

		It("does not lose updates when appends interleave", func() {
			// Raw read-modify-write from two writers can drop an append;
			// Update serializes the whole sequence under the store lock.
			const writers = 8
			const perWriter = 5

			var wg sync.WaitGroup
			for w := 0; w < writers; w++ {
				wg.Add(1)
				go func(w int) {
					defer GinkgoRecover()
					defer wg.Done()
					for i := 0; i < perWriter; i++ {
						err := store.Update(func(receipts []Receipt) []Receipt {
							return append(receipts, Receipt{Timestamp: int64(w*perWriter + i)})
						})
						Expect(err).NotTo(HaveOccurred())
					}
				}(w)
			}
			wg.Wait()

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(HaveLen(writers * perWriter))
		})
	})

	Describe("Clear", func() {
		BeforeEach(func() {
			Expect(store.Write([]Receipt{{ID: "a", Timestamp: 1}, {ID: "b", Timestamp: 2}, {ID: "c", Timestamp: 3}})).To(Succeed())
		})

		It("removes the list key; a subsequent read returns an empty list", func() {
			Expect(store.Clear()).To(Succeed())

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		})

		It("is idempotent", func() {
			Expect(store.Clear()).To(Succeed())
			Expect(store.Clear()).To(Succeed())

			out, err := store.Read()
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(BeEmpty())
		})
	})
})
