package subsidy

import "github.com/warp/carepath/generic"

// StandardInitiatives returns the workplace-environment catalog, without IDs.
// Stores assign IDs when the catalog is loaded.
func StandardInitiatives() []WorkplaceInitiative {
	items := []struct {
		cat  Category
		num  string
		desc string
	}{
		{CategoryQualification, "1-1", "介護職員等への研修の実施（外部研修への派遣を含む）"},
		{CategoryQualification, "1-2", "介護職員等への資格取得支援の実施"},
		{CategoryQualification, "1-3", "職員の能力評価の制度化"},
		{CategoryQualification, "1-4", "ICT・介護ロボットやAI・センサーの活用による業務改善"},

		{CategoryWorkStyle, "2-1", "雇用管理改善のための制度整備（賃金制度の明確化等）"},
		{CategoryWorkStyle, "2-2", "労働時間の短縮に向けた取り組み"},
		{CategoryWorkStyle, "2-3", "有給休暇取得促進のための取り組み"},
		{CategoryWorkStyle, "2-4", "育児・介護との両立支援制度の導入"},
		{CategoryWorkStyle, "2-5", "ハラスメント対策の実施"},
		{CategoryWorkStyle, "2-6", "職場環境の整備（休憩室・更衣室の改善等）"},

		{CategoryBalance, "3-1", "ミーティング等による職場内コミュニケーションの円滑化"},
		{CategoryBalance, "3-2", "地域包括ケアの一員としてのモチベーション向上の取り組み"},
		{CategoryBalance, "3-3", "キャリアパスの明示等による将来展望の提示"},
		{CategoryBalance, "3-4", "表彰制度等の実施による働きがいの向上"},
	}

	out := make([]WorkplaceInitiative, len(items))
	for i, it := range items {
		out[i] = WorkplaceInitiative{Category: it.cat, ItemNumber: it.num, Description: it.desc}
	}
	return out
}

// CountInitiatives tallies initiatives by category. Duplicate IDs count once;
// entries with an empty ID are always counted.
func CountInitiatives(initiatives []WorkplaceInitiative) InitiativeCounts {
	var c InitiativeCounts
	seen := make(map[generic.InitiativeID]bool, len(initiatives))

	for _, in := range initiatives {
		if in.ID != "" {
			if seen[in.ID] {
				continue
			}
			seen[in.ID] = true
		}
		switch in.Category {
		case CategoryQualification:
			c.Qualification++
		case CategoryWorkStyle:
			c.WorkStyle++
		case CategoryBalance:
			c.Balance++
		}
	}
	return c
}
