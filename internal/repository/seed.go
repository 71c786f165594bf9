package repository

import "nectix/internal/domain"

func ptr(v float64) *float64 { return &v }

// SeedProducts демо-каталог витрины
func SeedProducts() []domain.Product {
	return []domain.Product{
		{ID: 1, Name: "Camiseta Nectix Classic", Description: "Camiseta de algodão com estampa exclusiva", Price: 79.90, OriginalPrice: ptr(99.90), ImageURL: "/img/camiseta-classic.webp", Category: "vestuario"},
		{ID: 2, Name: "Moletom Nectix Street", Description: "Moletom canguru com capuz", Price: 189.90, ImageURL: "/img/moletom-street.webp", Category: "vestuario"},
		{ID: 3, Name: "Boné Nectix", Description: "Boné aba curva, ajuste traseiro", Price: 59.90, ImageURL: "/img/bone.webp", Category: "acessorios"},
		{ID: 4, Name: "Pack de Presets Lightroom", Description: "30 presets profissionais para edição", Price: 39.90, OriginalPrice: ptr(59.90), ImageURL: "/img/presets.webp", Category: "digital", DownloadURL: "/downloads/presets-v2.zip"},
		{ID: 5, Name: "Camiseta Nectix Oversized", Description: "Modelagem oversized, malha pesada", Price: 99.90, ImageURL: "/img/camiseta-oversized.webp", Category: "vestuario"},
		{ID: 6, Name: "E-book Guia de Fotografia", Description: "Guia completo em PDF, 120 páginas", Price: 29.90, ImageURL: "/img/ebook.webp", Category: "digital", DownloadURL: "/downloads/guia-fotografia.pdf"},
	}
}
