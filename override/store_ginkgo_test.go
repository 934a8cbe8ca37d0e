package override_test

import (
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/valence-dev/valence/models"
	"github.com/valence-dev/valence/override"
)

func TestOverrideSuite(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Override Store Suite")
}

var _ = Describe("Store", func() {
	var (
		path  string
		store *override.Store
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), "overrides.json")
		var err error
		store, err = override.Load(path)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("a fresh store", func() {
		It("starts empty", func() {
			Expect(store.Fingerprints()).To(BeEmpty())
		})
	})

	Describe("suppressing a violation across two runs", func() {
		It("suppresses the second run's identical violation", func() {
			v := models.NewViolation("mustContain", "c.ts", "missing sequence marker")

			firstRunOverridden := store.IsOverridden(v, "c.ts")
			Expect(firstRunOverridden).To(BeFalse())

			record, err := store.Add(v, "c.ts", "known false positive", "alice")
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Reason).To(Equal("known false positive"))

			secondRunOverridden := store.IsOverridden(v, "c.ts")
			Expect(secondRunOverridden).To(BeTrue())

			fetched, ok := store.Get(v, "c.ts")
			Expect(ok).To(BeTrue())
			Expect(fetched.AddedBy).To(Equal("alice"))
		})
	})

	Describe("reloading from disk", func() {
		It("preserves overrides written by a prior process", func() {
			v := models.NewViolation("hasExtension", "Widget.jsx", "wrong extension")
			_, err := store.Add(v, "Widget.jsx", "legacy file, migrating later", "bob")
			Expect(err).NotTo(HaveOccurred())

			reloaded, err := override.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded.IsOverridden(v, "Widget.jsx")).To(BeTrue())
		})
	})

	Describe("removing an override", func() {
		It("un-suppresses the violation and reports the prior existence", func() {
			v := models.NewViolation("mustContain", "c.ts", "missing sequence marker")
			_, err := store.Add(v, "c.ts", "temporary", "alice")
			Expect(err).NotTo(HaveOccurred())

			fp := models.FingerprintOf(v, "c.ts")
			existed, err := store.Remove(fp)
			Expect(err).NotTo(HaveOccurred())
			Expect(existed).To(BeTrue())
			Expect(store.IsOverridden(v, "c.ts")).To(BeFalse())
		})
	})

	Describe("export then import with merge=false", func() {
		It("reproduces the original store's overrides", func() {
			v := models.NewViolation("mustContain", "c.ts", "missing sequence marker")
			_, err := store.Add(v, "c.ts", "reason", "alice")
			Expect(err).NotTo(HaveOccurred())

			doc := store.Export()

			target, err := override.Load(filepath.Join(GinkgoT().TempDir(), "other.json"))
			Expect(err).NotTo(HaveOccurred())
			Expect(target.Import(doc, false)).To(Succeed())
			Expect(target.IsOverridden(v, "c.ts")).To(BeTrue())
		})
	})
})
