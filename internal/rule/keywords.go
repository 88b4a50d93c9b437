// Package rule implements the deterministic keyword classifier and the
// product gate that runs before any remote classification.
package rule

// CategoryDining is the generic dining bucket. Hits on it are split
// into CategoryDrink or CategoryFood by the drink-token dictionary.
const (
	CategoryDining = "餐飲"
	CategoryDrink  = "飲品"
	CategoryFood   = "食物"
)

// CategoryKeywords maps spending categories to their keyword
// dictionaries. First substring hit wins, in the iteration order of
// categoryOrder below.
var CategoryKeywords = map[string][]string{
	CategoryDining: {
		"餐廳", "美食", "小吃", "咖啡", "飲料", "外送", "便當", "早餐", "午餐", "晚餐", "宵夜",
		"甜點", "蛋糕", "餅乾", "零食", "麵包", "酥", "餅", "飯", "麵", "湯品", "沙拉", "漢堡",
		"披薩", "壽司", "火鍋", "燒烤", "炸物", "雞排", "滷味", "奶茶", "果汁", "啤酒", "紅酒",
		"白酒", "麥當勞", "肯德基", "ubereats", "foodpanda",
	},
	"交通": {
		"計程車", "公車", "捷運", "火車", "高鐵", "台鐵", "飛機", "加油", "停車", "過路費",
		"車票", "機票", "租車", "修車", "洗車", "uber", "taxi", "機車", "輪胎", "機油", "通勤",
	},
	"購物": {
		"購物", "商店", "超市", "便利商店", "百貨", "商場", "賣場", "量販", "網購", "電商",
		"拍賣", "3c", "手機", "電腦", "平板", "相機",
	},
	"娛樂": {
		"電影", "遊戲", "娛樂", "唱歌", "ktv", "電影院", "遊樂園", "展覽", "博物館", "美術館",
		"演唱會", "表演", "桌遊", "酒吧", "健身", "游泳", "瑜珈",
	},
	"醫療": {
		"醫院", "診所", "藥", "醫療", "健保", "掛號", "門診", "急診", "住院", "手術", "檢查",
		"疫苗", "處方", "維他命", "保健品", "牙醫", "牙套", "矯正", "洗牙", "口罩", "眼鏡",
	},
	"帳單": {
		"水費", "電費", "瓦斯費", "電話費", "網路費", "手機費", "管理費", "房租", "房貸",
		"保險費", "稅金", "罰單", "停車費", "信用卡費", "分期付款", "貸款", "利息", "手續費",
		"月費", "年費",
	},
	"住宿": {
		"飯店", "旅館", "民宿", "住宿", "房費", "hotel", "motel", "hostel", "airbnb", "度假村",
		"溫泉", "spa",
	},
	"日用品": {
		"衛生紙", "牙膏", "牙刷", "肥皂", "洗髮精", "沐浴乳", "洗面乳", "化妝品", "保養品",
		"面膜", "清潔劑", "洗衣精", "洗碗精", "垃圾袋", "保鮮膜", "濕紙巾", "棉花棒", "燈泡",
	},
	"教育": {
		"學費", "書", "筆", "紙", "本子", "文具", "補習", "課程", "講座", "研討會", "證照",
		"考試", "報名費", "教材", "參考書", "雜誌",
	},
	"旅遊": {
		"旅遊", "度假", "觀光", "景點", "門票", "導遊", "旅行社", "行李", "訂房", "導覽",
		"露營", "潛水", "滑雪", "登山",
	},
	"服飾": {
		"衣服", "褲子", "裙子", "外套", "大衣", "毛衣", "t恤", "襯衫", "襪子", "鞋子", "靴子",
		"涼鞋", "拖鞋", "帽子", "圍巾", "手套", "包包", "皮夾", "錢包", "項鍊", "戒指", "耳環",
		"手錶", "皮帶",
	},
	"寵物": {
		"寵物", "飼料", "貓砂", "項圈", "牽繩", "貓跳台", "洗毛精", "除蚤", "結紮", "獸醫",
		"寵物店",
	},
	"家庭": {
		"家具", "沙發", "床墊", "桌子", "椅子", "櫃子", "書櫃", "衣櫃", "窗簾", "地毯",
		"檯燈", "家電", "電視", "冰箱", "洗衣機", "冷氣", "電扇", "微波爐", "烤箱",
	},
}

// categoryOrder fixes dictionary scan order: specific categories first
// so their vocabulary beats the broad dining bucket on shared terms.
var categoryOrder = []string{
	"醫療", "交通", "帳單", "住宿", "教育", "旅遊", "服飾", "寵物", "家庭",
	"日用品", "娛樂", "購物", CategoryDining,
}

// DrinkTokens disambiguates dining hits into the beverage sub-category.
var DrinkTokens = []string{
	"奶茶", "拿鐵", "咖啡", "紅茶", "綠茶", "青茶", "烏龍", "果汁", "多多", "檸檬",
	"珍奶", "珍珠", "波霸", "奶蓋", "冰沙", "汽水", "可樂", "雪碧", "飲料", "豆漿",
}

// productKeywords marks text as a purchasable item for the local
// product fallback.
var productKeywords = []string{
	"酥", "餅", "麵包", "蛋糕", "飲料", "咖啡", "茶", "牛奶", "果汁", "飯", "麵", "菜", "肉",
	"魚", "蛋", "水果", "蔬菜", "零食", "衣服", "褲子", "鞋子", "帽子", "包包", "飾品", "書",
	"筆", "紙", "本子", "文具", "藥", "維他命", "保健品", "票", "券", "卡", "主食", "甜點",
	"湯品", "沙拉", "漢堡", "披薩", "壽司", "火鍋", "燒烤", "炸物", "奶茶", "啤酒", "紅酒", "白酒",
}

// nonProductKeywords covers invoice, payment and company vocabulary
// that never names an item.
var nonProductKeywords = []string{
	"公司", "有限公司", "股份有限公司", "企業", "商行", "商店",
	"發票", "統一編號", "序號", "收據", "憑證",
	"日期", "時間", "年", "月", "日", "時", "分",
	"總計", "合計", "小計", "稅額", "稅金", "折扣", "優惠",
	"信用卡", "現金", "收現", "找零", "刷卡", "電子支付",
	"地址", "電話", "傳真", "網址", "email", "信箱",
	"備註", "說明", "注意事項", "謝謝", "歡迎", "營業時間",
	"中華民國", "收銀機", "收執聯", "機台", "應收", "實收",
}

// Labels returns the candidate label set handed to the zero-shot
// classifier: every dictionary category plus the neutral bucket, with
// dining replaced by its two sub-categories.
func Labels() []string {
	labels := make([]string, 0, len(categoryOrder)+2)
	for _, cat := range categoryOrder {
		if cat == CategoryDining {
			labels = append(labels, CategoryDrink, CategoryFood)
			continue
		}
		labels = append(labels, cat)
	}
	labels = append(labels, "其他")
	return labels
}
