package walker

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/estratosfera/treinta-migrator/internal/domain/extract/classifier"
	"github.com/estratosfera/treinta-migrator/internal/domain/extract/extractor"
)

func testWalker() *Walker {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return New(extractor.New(classifier.New()), logger)
}

// writeWorkbook builds a three-sheet export in the shapes the source system
// produces: a headered month, a headerless continuation month, and a notes
// sheet with no tabular data.
func writeWorkbook(t *testing.T, faker *gofakeit.Faker) string {
	t.Helper()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Enero"))

	enero := [][]interface{}{
		{"TREINTA - Resumen de ventas"},
		{"Fecha", "Tipo", "Vendedor", "Contacto", "Valor", "Descripción"},
		{"05/01/2024", "Venta", "Tienda Norte", "Juan Perez", "45000", "Renovacion Netflix"},
		{"06/01/2024", "Venta", "Tienda Norte", "Pedro Ruiz", "20000", "disney ANULADO"},
		{"07/01/2024", "Gasto", "Tienda Norte", "Proveedor", "30000", "compra cuentas"},
	}
	for i, row := range enero {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Enero", cell, &row))
	}

	_, err := f.NewSheet("Febrero")
	require.NoError(t, err)
	febrero := [][]interface{}{
		{"03/02/2024", "Venta", "Tienda Norte", faker.Name(), "25000", "hbo max"},
		{"04/02/2024", "Venta", "Tienda Norte", faker.Name(), "55000", "spotify familiar"},
	}
	for i, row := range febrero {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Febrero", cell, &row))
	}

	_, err = f.NewSheet("Notas")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Notas", "A1", &[]interface{}{"cierre de caja pendiente"}))

	path := filepath.Join(t.TempDir(), "ventas_2024.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestWalker_WalkFile(t *testing.T) {
	w := testWalker()
	faker := gofakeit.New(11)
	path := writeWorkbook(t, faker)

	res, err := w.WalkFile(path, 2024)
	require.NoError(t, err)

	assert.Equal(t, 3, res.SheetsRead)
	assert.Equal(t, 0, res.SheetsFailed)

	t.Run("headerless sheet inherits the previous map", func(t *testing.T) {
		// One sale and one expense from Enero, two sales from Febrero.
		require.Len(t, res.Transactions, 4)

		feb := res.Transactions[2]
		assert.Equal(t, classifier.HBOMax, feb.Service)
		assert.Equal(t, 25000.0, feb.Amount)
		assert.Equal(t, 2024, feb.Year)
	})

	t.Run("business rules applied during the walk", func(t *testing.T) {
		assert.Equal(t, 1, res.Skipped[extractor.SkipVoided])
		assert.Equal(t, -30000.0, res.Transactions[1].Amount)
		assert.Equal(t, extractor.KindExpense, res.Transactions[1].Kind)
	})

	t.Run("notes sheet contributes nothing but skips", func(t *testing.T) {
		assert.Equal(t, 1, res.Skipped[extractor.SkipUnparseable])
	})
}

func TestWalker_HeaderInheritance_ThreeSheets(t *testing.T) {
	w := testWalker()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Enero"))
	require.NoError(t, f.SetSheetRow("Enero", "A1", &[]interface{}{"Fecha", "Tipo", "Contacto", "Valor"}))
	require.NoError(t, f.SetSheetRow("Enero", "A2", &[]interface{}{"05/01/2024", "Venta", "Juan", "45000"}))

	_, err := f.NewSheet("Febrero")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Febrero", "A1", &[]interface{}{"2024-01-05", "Venta", "Ana", "50000"}))

	_, err = f.NewSheet("Marzo")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Marzo", "A1", &[]interface{}{"10/03/2024", "Venta", "Luis", "20000"}))

	path := filepath.Join(t.TempDir(), "trimestre.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := w.WalkFile(path, 2024)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 3)
	assert.Equal(t, "Juan", res.Transactions[0].Client)
	assert.Equal(t, "Ana", res.Transactions[1].Client)
	assert.Equal(t, 50000.0, res.Transactions[1].Amount)
	assert.Equal(t, "Luis", res.Transactions[2].Client)
}

func TestWalker_LowercaseNotesRowDoesNotShadowInheritance(t *testing.T) {
	w := testWalker()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "Enero"))
	require.NoError(t, f.SetSheetRow("Enero", "A1", &[]interface{}{"Fecha", "Tipo", "Contacto", "Valor"}))
	require.NoError(t, f.SetSheetRow("Enero", "A2", &[]interface{}{"05/01/2024", "Venta", "Juan", "45000"}))

	// The leading row mentions both marker words in running text; it must
	// not be read as a header, so the sheet inherits Enero's map.
	_, err := f.NewSheet("Febrero")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Febrero", "A1", &[]interface{}{"revisar fecha y tipo de cada cuenta"}))
	require.NoError(t, f.SetSheetRow("Febrero", "A2", &[]interface{}{"03/02/2024", "Venta", "Ana", "50000"}))

	path := filepath.Join(t.TempDir(), "notas_mezcladas.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := w.WalkFile(path, 2024)
	require.NoError(t, err)

	require.Len(t, res.Transactions, 2)
	assert.Equal(t, "Ana", res.Transactions[1].Client)
	assert.Equal(t, 50000.0, res.Transactions[1].Amount)
}

func TestWalker_WalkFile_NoHeaderAnywhere(t *testing.T) {
	w := testWalker()

	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"notas sueltas"}))
	path := filepath.Join(t.TempDir(), "notas.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	res, err := w.WalkFile(path, 2024)
	require.NoError(t, err)
	assert.Empty(t, res.Transactions)
	assert.Equal(t, 1, res.SheetsRead)
}

func TestWalker_WalkFile_UnsupportedFormat(t *testing.T) {
	w := testWalker()
	_, err := w.WalkFile("ventas.csv", 2024)
	assert.Error(t, err)
}

func TestWalker_WalkFile_MissingFile(t *testing.T) {
	w := testWalker()
	_, err := w.WalkFile(filepath.Join(t.TempDir(), "nope.xlsx"), 2024)
	assert.Error(t, err)
}
