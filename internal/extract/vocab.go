package extract

// Closed vocabularies for entity extraction. All matching happens on
// folded text (see the turkish package); the canonical values kept here
// are the spellings that actually occur in the statistics data.
//
// List order matters and is part of the extraction contract: the first
// match in list order wins, which is the deterministic tie-break when one
// name is a substring or prefix of another.

// provinces is the full list of 81 provinces in plate-number order, the
// same order TÜİK publishes them in.
var provinces = []string{
	"Adana", "Adıyaman", "Afyonkarahisar", "Ağrı", "Amasya", "Ankara",
	"Antalya", "Artvin", "Aydın", "Balıkesir", "Bilecik", "Bingöl",
	"Bitlis", "Bolu", "Burdur", "Bursa", "Çanakkale", "Çankırı", "Çorum",
	"Denizli", "Diyarbakır", "Edirne", "Elazığ", "Erzincan", "Erzurum",
	"Eskişehir", "Gaziantep", "Giresun", "Gümüşhane", "Hakkari", "Hatay",
	"Isparta", "Mersin", "İstanbul", "İzmir", "Kars", "Kastamonu",
	"Kayseri", "Kırklareli", "Kırşehir", "Kocaeli", "Konya", "Kütahya",
	"Malatya", "Manisa", "Kahramanmaraş", "Mardin", "Muğla", "Muş",
	"Nevşehir", "Niğde", "Ordu", "Rize", "Sakarya", "Samsun", "Siirt",
	"Sinop", "Sivas", "Tekirdağ", "Tokat", "Trabzon", "Tunceli",
	"Şanlıurfa", "Uşak", "Van", "Yozgat", "Zonguldak", "Aksaray",
	"Bayburt", "Karaman", "Kırıkkale", "Batman", "Şırnak", "Bartın",
	"Ardahan", "Iğdır", "Yalova", "Karabük", "Kilis", "Osmaniye", "Düzce",
}

// districts is a curated list of districts with significant agricultural
// output. Whole-word matched the same way provinces are.
var districts = []string{
	"Ceyhan", "Kozan", "Karataş", "Yüreğir",
	"Tarsus", "Erdemli", "Silifke", "Anamur", "Mut",
	"Alanya", "Manavgat", "Serik", "Kumluca", "Finike", "Elmalı", "Korkuteli",
	"İskenderun", "Dörtyol", "Samandağ", "Erzin",
	"Bafra", "Çarşamba", "Terme", "Vezirköprü",
	"Akhisar", "Salihli", "Alaşehir", "Turgutlu", "Sarıgöl",
	"Nazilli", "Söke", "Çine", "İncirliova",
	"Torbalı", "Ödemiş", "Tire", "Bergama", "Menemen",
	"Ereğli", "Çumra", "Akşehir", "Beyşehir",
	"Polatlı", "Beypazarı", "Haymana",
	"Suruç", "Siverek", "Viranşehir", "Akçakale", "Harran",
	"Bismil", "Çınar", "Silvan",
	"Fethiye", "Milas", "Dalaman", "Ortaca",
	"Gemlik", "Mudanya", "Karacabey", "Mustafakemalpaşa", "İznik",
	"Keşan", "Uzunköprü", "İpsala",
	"Lüleburgaz", "Babaeski",
	"Ünye", "Fatsa", "Perşembe",
	"Of", "Akçaabat", "Sürmene",
	"Niksar", "Erbaa", "Zile", "Turhal",
	"Develi", "Yahyalı", "Bünyan",
	"Doğanhisar", "Ilgın",
	"Elbistan", "Afşin", "Pazarcık",
	"Nizip", "İslahiye", "Araban",
}

// product maps a canonical data value to its alias roots. Roots are folded
// prefixes; they tolerate Turkish suffixes by token-prefix matching
// ("domatesi", "domates üretimi"). English aliases are kept because mixed
// questions show up in practice.
type product struct {
	Value string
	Roots []string
}

var products = []product{
	{"Domates", []string{"domates", "tomato", "tomatoes"}},
	{"Biber", []string{"biber", "pepper", "peppers"}},
	{"Patlıcan", []string{"patlican", "eggplant", "aubergine"}},
	{"Salatalık", []string{"salatalik", "hiyar", "cucumber"}},
	{"Kabak", []string{"kabak", "zucchini", "squash"}},
	{"Lahana", []string{"lahana", "cabbage"}},
	{"Marul", []string{"marul", "lettuce"}},
	{"Ispanak", []string{"ispanak", "spinach"}},
	{"Soğan", []string{"sogan", "onion", "onions"}},
	{"Sarımsak", []string{"sarimsak", "garlic"}},
	{"Patates", []string{"patates", "potato", "potatoes"}},
	{"Havuç", []string{"havuc", "carrot", "carrots"}},
	{"Fasulye", []string{"fasulye", "bean", "beans"}},
	{"Nohut", []string{"nohut", "chickpea", "chickpeas"}},
	{"Mercimek", []string{"mercimek", "lentil", "lentils"}},
	{"Buğday", []string{"bugday", "wheat"}},
	{"Arpa", []string{"arpa", "barley"}},
	{"Mısır", []string{"misir", "corn", "maize"}},
	{"Çeltik", []string{"celtik", "pirinc", "rice"}},
	{"Yulaf", []string{"yulaf", "oat", "oats"}},
	{"Çavdar", []string{"cavdar", "rye"}},
	{"Ayçiçeği", []string{"aycicek", "aycicegi", "sunflower"}},
	{"Pamuk", []string{"pamuk", "cotton"}},
	{"Şeker Pancarı", []string{"pancar", "seker pancari", "sugar beet"}},
	{"Tütün", []string{"tutun", "tobacco"}},
	{"Çay", []string{"cay", "tea"}},
	{"Elma", []string{"elma", "apple", "apples"}},
	{"Armut", []string{"armut", "pear", "pears"}},
	{"Ayva", []string{"ayva", "quince"}},
	{"Şeftali", []string{"seftali", "peach", "peaches"}},
	{"Kayısı", []string{"kayisi", "apricot", "apricots"}},
	{"Kiraz", []string{"kiraz", "cherry", "cherries"}},
	{"Vişne", []string{"visne", "sour cherry"}},
	{"Erik", []string{"erik", "plum", "plums"}},
	{"Üzüm", []string{"uzum", "grape", "grapes"}},
	{"İncir", []string{"incir", "fig", "figs"}},
	{"Nar", []string{"nar", "pomegranate"}},
	{"Portakal", []string{"portakal", "orange", "oranges"}},
	{"Mandalina", []string{"mandalina", "mandarin", "tangerine"}},
	{"Limon", []string{"limon", "lemon", "lemons"}},
	{"Greyfurt", []string{"greyfurt", "grapefruit"}},
	{"Muz", []string{"muz", "banana", "bananas"}},
	{"Çilek", []string{"cilek", "strawberry", "strawberries"}},
	{"Karpuz", []string{"karpuz", "watermelon"}},
	{"Kavun", []string{"kavun", "melon"}},
	{"Fındık", []string{"findik", "hazelnut", "hazelnuts"}},
	{"Antep Fıstığı", []string{"fistik", "antep fistigi", "pistachio"}},
	{"Ceviz", []string{"ceviz", "walnut", "walnuts"}},
	{"Badem", []string{"badem", "almond", "almonds"}},
	{"Zeytin", []string{"zeytin", "olive", "olives"}},
}

// multiVariety lists the products that appear in the data under multiple
// named sub-varieties ("Biber (Dolmalık)", "Biber (Sivri)", "Dolmalık
// Biber", ...). These match via head-match (starts-with or contains the
// capitalized token); everything else matches exact-or-starts-with to keep
// unrelated products that merely share a substring out of the results.
// Kept as an explicit table: the distinction is data-driven, not derivable
// from the name.
var multiVariety = map[string]bool{
	"Domates": true,
	"Biber":   true,
	"Üzüm":    true,
	"Lahana":  true,
	"Kabak":   true,
	"Soğan":   true,
	"Fasulye": true,
	"Mısır":   true,
	"Erik":    true,
}

// MultiVariety reports whether the canonical product value is on the
// multi-variety head-match allowlist.
func MultiVariety(value string) bool {
	return multiVariety[value]
}

// Provinces returns the canonical province vocabulary. Used as the list
// fallback when the database cannot be reached.
func Provinces() []string {
	out := make([]string, len(provinces))
	copy(out, provinces)
	return out
}

// Products returns the canonical product vocabulary.
func Products() []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Value)
	}
	return out
}

// category keyword sets. Mutually exclusive by construction: the first
// matching set wins and no sentence is expected to hit two.
var categories = []struct {
	Value    string
	Keywords []string
}{
	{"Meyve", []string{"meyve", "fruit"}},
	{"Sebze", []string{"sebze", "vegetable"}},
	{"Tahıl", []string{"tahil", "hububat", "grain", "cereal"}},
}
