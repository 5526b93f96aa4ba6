package result_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/cosmosim/internal/result"
)

var _ = Describe("CSVLine", func() {
	It("formats fields in fixed order with a trailing newline", func() {
		r := result.SimulationResult{Time: 1.5, Density: 0.9, Energy: 1.1, Expansion: 1.02, Gravitation: 0.98}
		Expect(r.CSVLine()).To(Equal("1.5,0.9,1.1,1.02,0.98\n"))
	})

	It("formats the defaults", func() {
		Expect(result.Default().CSVLine()).To(Equal("0,1,1,1,1\n"))
	})
})

var _ = DescribeTable("FormatValue",
	func(v float64, want string) {
		Expect(result.FormatValue(v)).To(Equal(want))
	},
	Entry("integer", 1.0, "1"),
	Entry("zero", 0.0, "0"),
	Entry("fraction", 0.01, "0.01"),
	Entry("large without exponent", 1e21, "1000000000000000000000"),
	Entry("negative", -2.5, "-2.5"),
)

var _ = Describe("WriteCSVLine", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("writes exactly one line with five numeric fields", func() {
		path := filepath.Join(dir, "simulation_results.csv")
		r := result.SimulationResult{Time: 1.5, Density: 0.9, Energy: 1.1, Expansion: 1.02, Gravitation: 0.98}
		Expect(result.WriteCSVLine(path, r)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("1.5,0.9,1.1,1.02,0.98\n"))
		Expect(strings.Count(string(data), "\n")).To(Equal(1))
		Expect(strings.Split(strings.TrimSuffix(string(data), "\n"), ",")).To(HaveLen(5))
	})

	It("replaces existing content", func() {
		path := filepath.Join(dir, "out.csv")
		Expect(os.WriteFile(path, []byte("old,old\nmore\nlines\n"), 0644)).To(Succeed())

		Expect(result.WriteCSVLine(path, result.Default())).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("0,1,1,1,1\n"))
	})

	It("leaves no temp files behind", func() {
		path := filepath.Join(dir, "out.csv")
		Expect(result.WriteCSVLine(path, result.Default())).To(Succeed())

		entries, err := os.ReadDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(entries).To(HaveLen(1))
		Expect(entries[0].Name()).To(Equal("out.csv"))
	})

	It("fails with ErrWrite when the directory does not exist", func() {
		path := filepath.Join(dir, "nope", "out.csv")
		err := result.WriteCSVLine(path, result.Default())
		Expect(errors.Is(err, result.ErrWrite)).To(BeTrue())
		_, statErr := os.Stat(path)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})

var _ = Describe("series CSV", func() {
	table := []result.SimulationResult{
		{Time: 0.0, Density: 1.0, Energy: 1.0, Expansion: 1.0, Gravitation: 1.0},
		{Time: 0.01, Density: 0.9, Energy: 1.1, Expansion: 1.01, Gravitation: 0.99},
		{Time: 0.02, Density: 0.81, Energy: 1.21, Expansion: 1.0301, Gravitation: 0.9801},
	}

	It("writes a header and one row per record", func() {
		var buf bytes.Buffer
		Expect(result.WriteSeriesCSV(&buf, table)).To(Succeed())
		Expect(buf.String()).To(Equal(
			"Time,Density,Energy,Expansion,Gravitation\n" +
				"0,1,1,1,1\n" +
				"0.01,0.9,1.1,1.01,0.99\n" +
				"0.02,0.81,1.21,1.0301,0.9801\n"))
	})

	It("reads back what it writes", func() {
		var buf bytes.Buffer
		Expect(result.WriteSeriesCSV(&buf, table)).To(Succeed())
		got, err := result.ReadSeriesCSV(&buf)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(table))
	})

	It("rejects a wrong header", func() {
		_, err := result.ReadSeriesCSV(strings.NewReader("a,b,c,d,e\n1,2,3,4,5\n"))
		Expect(errors.Is(err, result.ErrDecode)).To(BeTrue())
	})

	It("rejects a non-numeric cell", func() {
		_, err := result.ReadSeriesCSV(strings.NewReader("Time,Density,Energy,Expansion,Gravitation\n1,2,x,4,5\n"))
		var de *result.DecodeError
		Expect(errors.As(err, &de)).To(BeTrue())
		Expect(de.Field).To(Equal("energy"))
	})

	It("rejects a short row", func() {
		_, err := result.ReadSeriesCSV(strings.NewReader("Time,Density,Energy,Expansion,Gravitation\n1,2,3\n"))
		Expect(errors.Is(err, result.ErrDecode)).To(BeTrue())
	})
})

var _ = Describe("SimulationResult fields", func() {
	It("looks fields up by name", func() {
		r := result.SimulationResult{Time: 1, Density: 2, Energy: 3, Expansion: 4, Gravitation: 5}
		v, ok := r.Field("expansion")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(4.0))

		_, ok = r.Field("pressure")
		Expect(ok).To(BeFalse())
	})

	It("replaces a field by name", func() {
		r, ok := result.Default().WithField("density", 2.5)
		Expect(ok).To(BeTrue())
		Expect(r.Density).To(Equal(2.5))
		Expect(r.Energy).To(Equal(1.0))
	})
})
