package analysis

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Answered pairs a pack question with its result rows, or with the
// error that replaced them. Failed questions still go into the prompt;
// the model is told what could not be answered.
type Answered struct {
	Question Question
	Rows     []map[string]any
	Err      error
}

// Report prompt caps each data block so one wide question cannot eat
// the whole context window.
const maxDataLen = 4000

const reportRules = `Sen bir tarım ekonomisti ve karar destek uzmanısın.
Yanıtını Türkçe ver. Bu bir chatbot yazısı değil, bir karar belgesidir. Kurumsal ve profesyonel dil kullan.

GENEL KURALLAR:
- Sayısal verileri kullan, genel konuşma yapma
- Üretim miktarlarını ton olarak belirt, büyük sayılarda "milyon ton" veya "bin ton" kullan
- Yüzde değerlerini tutarlı formatta yaz: %1, %2, %12,8 (ondalıklı ise virgül kullan)
- Veride olmayan yeni üretim/alan değerleri icat etme. Gerekli oranları yalnızca verilen seriden türet.
- Türetilen oranları "yaklaşık" ve "hesaplanan" olarak belirt; ham veri gibi sunma.
- Yüzde ve sıralama bilgilerini veride nasıl geçiyorsa öyle yaz

AKSİYON YAZIM KURALLARI:
- Üretimi AZALAN ürünler için yalnızca neden analizi, yapısal sorun tespiti, önleyici tedbirler ve alternatif ürüne geçiş öner; kapasite artırımı veya yatırım çağrısı yapma.
- Üretimi ARTAN ürünler için yalnızca kapasite artışı, yatırım fırsatı, ihracat ve pazar geliştirme öner; sorun odaklı dil kullanma.
- Lider/doygun ürünler için korumaya dönük politika, verimlilik ve katma değer öner; alan genişletme önerme.
- Aynı ürün için çelişkili aksiyon türleri kullanma.

SENARYO YAZIM KURALLARI:
- Kesinlik iddiası kullanma; tüm senaryolar koşullu ifadelerle yazılmalı.
- Senaryolar mevcut veriden türetilmeli, dış varsayım eklenmemeli.
- "yaklaşık", "bandında", "devam ederse" gibi koşullu ifadeler kullan.`

// BuildReportPrompt renders the decision-card prompt for one analysis
// run. tip is "il" or "urun"; it picks the context sentence and the
// format of the first card section.
func BuildReportPrompt(tip, secim string, year int, answered []Answered) string {
	var context string
	if tip == "il" {
		context = fmt.Sprintf("%s ili için %d yılı tarımsal analiz.", secim, year)
	} else {
		context = fmt.Sprintf("%s ürünü için %d yılı Türkiye geneli analiz.", secim, year)
	}

	var data strings.Builder
	for _, a := range answered {
		data.WriteString("**")
		data.WriteString(a.Question.Text)
		data.WriteString("**\nVeri: ")
		if a.Err != nil {
			data.WriteString(safeJSON(map[string]any{"hata": a.Err.Error()}))
		} else {
			data.WriteString(safeJSON(a.Rows))
		}
		data.WriteString("\n\n")
	}

	var firstSection string
	if tip == "il" {
		firstSection = fmt.Sprintf(`Her ürün grubu (Meyve, Sebze, Tahıl) için şu formatta bir cümle yaz:
   "Türkiye'de %[1]d yılında [ürün grubu] üretimi [TR toplam] ton iken %[2]s üretimi [il toplam] ton olup Türkiye üretimine katkısı %%[pay] ile [sıra]. sıradadır."
   Sıralama bilgisini karıştırma: ürün grubu sıralaması ile toplam üretim sıralamasını ayrı ayrı belirt.
   Son olarak ilin stratejik konumunu özetleyen tek bir sentez cümlesi yaz.`, year, secim)
	} else {
		firstSection = "Bu ürünün Türkiye genelindeki durumu, üretim trendi ve yoğunlaşma analizi ile 2-3 cümle özet yaz."
	}

	return fmt.Sprintf(`%s

%s

Aşağıdaki verilere dayanarak KARAR KARTI formatında analiz yap:

%s
KARAR KARTI FORMATI:

1. **Genel Değerlendirme**
%s

2. **Güçlü Yönler** (3 madde, somut rakam)

3. **Zayıf Yönler / Riskler** (3 madde, her birini tipine göre etiketle: Yapısal / Sektörel / Konjonktürel)

4. **Trend Analizi** (Yön, geçici mi yapısal mı, alan-üretim ilişkisi yorumu)

5. **Önerilen Aksiyonlar** (rol bazlı: Bakanlık, İl Müdürlüğü / Kalkınma Ajansı, Üretici / Yatırımcı; her rol için 1-2 öneri)

6. **Risk Seviyesi** (Düşük/Orta/Yüksek + bir satır gerekçe)

7. **Karar Sinyalleri** (koru / izle / müdahale; her ürün grubu veya tema için tek satır)

8. **Güven Düzeyi** (%%70-%%95 + 2-3 madde gerekçe: veri kalitesi, seri uzunluğu, dahil edilmeyen değişkenler)

9. **Senaryo Analizi**
   Son 5 yılın değişim hızıyla %d projeksiyonu; ardından iyimser, baz ve kötümser senaryo (her biri 2-3 cümle, somut rakam).
   Başına şu notu ekle: "Senaryolar, mevcut eğilimler ve veriye dayalı varsayımlar üzerinden üretilmiş olup yön gösterici niteliktedir."

10. **Analiz Sınırları**
   "Bu karar kartı; ürün bazında kesin üretim tahmini yapmaz, çiftçi bazlı gelir hesaplaması içermez, iklim senaryolarını modellemez. Analiz; %d-%d yılları gerçekleşmiş verilere dayalı olup yön gösterici niteliktedir."`,
		reportRules, context, data.String(), firstSection, year+3, year-4, year)
}

// safeJSON renders v as JSON and truncates oversized blocks.
func safeJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	s := string(b)
	if len(s) > maxDataLen {
		return s[:maxDataLen] + "...(kırpıldı)"
	}
	return s
}
