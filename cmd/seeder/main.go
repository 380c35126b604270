package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/lexqa"
)

// A small excerpt of civil code articles for seeding a demo database.
var articles = []string{
	"第一条 为了保护民事主体的合法权益，调整民事关系，维护社会和经济秩序，适应中国特色社会主义发展要求，弘扬社会主义核心价值观，根据宪法，制定本法。",
	"第二条 民法调整平等主体的自然人、法人和非法人组织之间的人身关系和财产关系。",
	"第三条 民事主体的人身权利、财产权利以及其他合法权益受法律保护，任何组织或者个人不得侵犯。",
	"第四条 民事主体在民事活动中的法律地位一律平等。",
	"第五条 民事主体从事民事活动，应当遵循自愿原则，按照自己的意思设立、变更、终止民事法律关系。",
	"第六条 民事主体从事民事活动，应当遵循公平原则，合理确定各方的权利和义务。",
	"第七条 民事主体从事民事活动，应当遵循诚信原则，秉持诚实，恪守承诺。",
	"第八条 民事主体从事民事活动，不得违反法律，不得违背公序良俗。",
	"第十三条 自然人从出生时起到死亡时止，具有民事权利能力，依法享有民事权利，承担民事义务。",
	"第十四条 自然人的民事权利能力一律平等。",
	"第十七条 十八周岁以上的自然人为成年人。不满十八周岁的自然人为未成年人。",
	"第十八条 成年人为完全民事行为能力人，可以独立实施民事法律行为。十六周岁以上的未成年人，以自己的劳动收入为主要生活来源的，视为完全民事行为能力人。",
	"第一百一十条 自然人享有生命权、身体权、健康权、姓名权、肖像权、名誉权、荣誉权、隐私权、婚姻自主权等权利。",
	"第一百一十三条 民事主体的财产权利受法律平等保护。",
	"第一百二十条 民事权益受到侵害的，被侵权人有权请求侵权人承担侵权责任。",
	"第一百四十三条 具备下列条件的民事法律行为有效：（一）行为人具有相应的民事行为能力；（二）意思表示真实；（三）不违反法律、行政法规的强制性规定，不违背公序良俗。",
	"第一百八十八条 向人民法院请求保护民事权利的诉讼时效期间为三年。法律另有规定的，依照其规定。",
	"第四百六十九条 当事人订立合同，可以采用书面形式、口头形式或者其他形式。",
	"第五百零九条 当事人应当按照约定全面履行自己的义务。当事人应当遵循诚信原则，根据合同的性质、目的和交易习惯履行通知、协助、保密等义务。",
	"第五百七十七条 当事人一方不履行合同义务或者履行合同义务不符合约定的，应当承担继续履行、采取补救措施或者赔偿损失等违约责任。",
	"第一千零四十三条 家庭应当树立优良家风，弘扬家庭美德，重视家庭文明建设。夫妻应当互相忠实，互相尊重，互相关爱；家庭成员应当敬老爱幼，互相帮助，维护平等、和睦、文明的婚姻家庭关系。",
	"第一千一百六十五条 行为人因过错侵害他人民事权益造成损害的，应当承担侵权责任。依照法律规定推定行为人有过错，其不能证明自己没有过错的，应当承担侵权责任。",
}

var seedFileName = flag.String("src", "", "file of statute text to ingest")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

func main() {
	db, err := lexqa.NewDatabase("./statute_db")
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	if *seedFileName != "" {
		passages, err := pipeline.IngestFile(ctx, *seedFileName)
		if err != nil {
			panic(err)
		}
		fmt.Printf("%s: %d passages\n", filepath.Base(*seedFileName), len(passages))
		return
	}

	passages, err := pipeline.IngestText(ctx, "civil-code-sample", strings.Join(articles, "\n\n"))
	if err != nil {
		panic(err)
	}
	fmt.Printf("civil-code-sample: %d passages\n", len(passages))
}
