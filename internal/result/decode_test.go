package result_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cosmosim/internal/result"
)

var _ = Describe("Decode", func() {
	It("decodes a single record", func() {
		in := `[{"time":1.0,"density":2.0,"energy":3.0,"expansion":4.0,"gravitation":5.0}]`
		got, err := result.Decode(strings.NewReader(in))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal([]result.SimulationResult{
			{Time: 1, Density: 2, Energy: 3, Expansion: 4, Gravitation: 5},
		}))
		Expect(got[0].String()).To(Equal("time=1, density=2, energy=3, expansion=4, gravitation=5"))
	})

	It("decodes an empty array to an empty slice", func() {
		got, err := result.Decode(strings.NewReader("[]"))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).NotTo(BeNil())
		Expect(got).To(BeEmpty())
	})

	It("preserves input order", func() {
		in := `[
			{"time":0.02,"density":0.81,"energy":1.21,"expansion":1.0301,"gravitation":0.9801},
			{"time":0.0,"density":1.0,"energy":1.0,"expansion":1.0,"gravitation":1.0},
			{"time":0.01,"density":0.9,"energy":1.1,"expansion":1.01,"gravitation":0.99}
		]`
		got, err := result.Decode(strings.NewReader(in))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(3))
		Expect(got[0].Time).To(Equal(0.02))
		Expect(got[1].Time).To(Equal(0.0))
		Expect(got[2].Expansion).To(Equal(1.01))
	})

	It("ignores fields it does not know", func() {
		in := `[{"time":1,"density":2,"energy":3,"expansion":4,"gravitation":5,"note":"x"}]`
		got, err := result.Decode(strings.NewReader(in))
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(HaveLen(1))
	})

	DescribeTable("rejects a record missing a field",
		func(field string) {
			obj := map[string]string{
				"time": "1", "density": "2", "energy": "3", "expansion": "4", "gravitation": "5",
			}
			delete(obj, field)
			parts := make([]string, 0, len(obj))
			for k, v := range obj {
				parts = append(parts, `"`+k+`":`+v)
			}
			in := "[{" + strings.Join(parts, ",") + "}]"

			got, err := result.Decode(strings.NewReader(in))
			Expect(got).To(BeNil())
			Expect(errors.Is(err, result.ErrDecode)).To(BeTrue())
			Expect(errors.Is(err, result.ErrMissingField)).To(BeTrue())

			var de *result.DecodeError
			Expect(errors.As(err, &de)).To(BeTrue())
			Expect(de.Field).To(Equal(field))
			Expect(de.Index).To(Equal(0))
		},
		Entry("time", "time"),
		Entry("density", "density"),
		Entry("energy", "energy"),
		Entry("expansion", "expansion"),
		Entry("gravitation", "gravitation"),
	)

	DescribeTable("rejects non-numeric values",
		func(value string) {
			in := `[{"time":1,"density":2,"energy":` + value + `,"expansion":4,"gravitation":5}]`
			_, err := result.Decode(strings.NewReader(in))
			Expect(errors.Is(err, result.ErrDecode)).To(BeTrue())
			Expect(errors.Is(err, result.ErrNotNumeric)).To(BeTrue())
		},
		Entry("string", `"3.0"`),
		Entry("null", `null`),
		Entry("bool", `true`),
		Entry("object", `{"v":3}`),
		Entry("array", `[3]`),
	)

	It("matches field names case-sensitively", func() {
		in := `[{"Time":1,"density":2,"energy":3,"expansion":4,"gravitation":5}]`
		_, err := result.Decode(strings.NewReader(in))
		Expect(errors.Is(err, result.ErrMissingField)).To(BeTrue())
	})

	It("reports the index of the failing record", func() {
		in := `[{"time":1,"density":2,"energy":3,"expansion":4,"gravitation":5},{"time":1}]`
		_, err := result.Decode(strings.NewReader(in))
		var de *result.DecodeError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Index).To(Equal(1))
	})

	It("names the record, field and cause in the message", func() {
		_, err := result.Decode(strings.NewReader(`[{"time":1}]`))
		Expect(err).To(MatchError(`result: failed to decode results: record 0: field "density": result: missing required field`))

		_, err = result.Decode(strings.NewReader(`[{"time":null}]`))
		Expect(err).To(MatchError(`result: failed to decode results: record 0: field "time": result: value is not numeric`))
	})

	DescribeTable("rejects sources that are not an array of objects",
		func(in string) {
			_, err := result.Decode(strings.NewReader(in))
			Expect(errors.Is(err, result.ErrDecode)).To(BeTrue())
		},
		Entry("empty", ``),
		Entry("truncated", `[{"time":1`),
		Entry("object", `{"time":1}`),
		Entry("null", `null`),
		Entry("number element", `[1]`),
		Entry("null element", `[null]`),
	)
})

var _ = Describe("Load", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("reports a missing file as not found", func() {
		got, err := result.Load(filepath.Join(dir, "missing.json"))
		Expect(got).To(BeNil())
		Expect(errors.Is(err, result.ErrNotFound)).To(BeTrue())
		Expect(errors.Is(err, result.ErrDecode)).To(BeFalse())
	})

	It("reports a malformed file as a decode failure", func() {
		path := filepath.Join(dir, "bad.json")
		Expect(os.WriteFile(path, []byte("not json"), 0644)).To(Succeed())

		_, err := result.Load(path)
		Expect(errors.Is(err, result.ErrDecode)).To(BeTrue())
		Expect(errors.Is(err, result.ErrNotFound)).To(BeFalse())
	})

	It("round-trips records written with WriteJSON", func() {
		path := filepath.Join(dir, "results.json")
		want := []result.SimulationResult{
			result.Default(),
			{Time: 0.01, Density: 0.9, Energy: 1.1, Expansion: 1.01, Gravitation: 0.99},
			{Time: 1e-9, Density: 123456.789, Energy: -2.5, Expansion: 3, Gravitation: 0.1 + 0.2},
		}
		Expect(result.WriteJSON(path, want)).To(Succeed())

		got, err := result.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(want))
	})
})
