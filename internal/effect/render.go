package effect

import (
	"fmt"
	"strings"

	"github.com/bountydotnew/bounty.new-sub002/internal/model"
	"github.com/shopspring/decimal"
)

// renderFundedComment 托管完成公告评论正文
func renderFundedComment(bounty *model.BountyModel, submissionCount int64, url string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("## 💰 赏金已托管：%s %s\n\n",
		bounty.Amount.StringFixed(2), strings.ToUpper(bounty.Currency)))
	sb.WriteString(fmt.Sprintf("由 **%s** 发布的赏金已完成资金托管，欢迎提交解决方案。\n\n", bounty.CreatorName))
	if submissionCount > 0 {
		sb.WriteString(fmt.Sprintf("当前已有 **%d** 份提交。\n\n", submissionCount))
	}
	sb.WriteString(fmt.Sprintf("👉 [查看赏金详情](%s)\n", url))
	return sb.String()
}

// renderSubmissionComment 托管后改写的提交评论正文
func renderSubmissionComment(sub *model.SubmissionModel, bounty *model.BountyModel, url string) string {
	return fmt.Sprintf(
		"🛠️ **%s** 已提交解决方案。该赏金（%s %s）已完成资金托管，验收通过后将自动发放。\n\n👉 [查看赏金详情](%s)\n",
		sub.HunterName, bounty.Amount.StringFixed(2), strings.ToUpper(bounty.Currency), url)
}

// renderRefundEmail 退款确认邮件
//
// 平台费仅为收据展示用途，由原金额与实退金额相减得出，不参与
// 任何状态判断。
func renderRefundEmail(bounty *model.BountyModel, refunded, original decimal.Decimal) (subject, html string) {
	platformFee := original.Sub(refunded)

	subject = fmt.Sprintf("赏金「%s」退款确认", bounty.Title)

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("<h2>赏金「%s」已退款</h2>", bounty.Title))
	sb.WriteString("<table>")
	sb.WriteString(fmt.Sprintf("<tr><td>原金额</td><td>%s %s</td></tr>",
		original.StringFixed(2), strings.ToUpper(bounty.Currency)))
	sb.WriteString(fmt.Sprintf("<tr><td>退款金额</td><td>%s %s</td></tr>",
		refunded.StringFixed(2), strings.ToUpper(bounty.Currency)))
	if platformFee.IsPositive() {
		sb.WriteString(fmt.Sprintf("<tr><td>平台费</td><td>%s %s</td></tr>",
			platformFee.StringFixed(2), strings.ToUpper(bounty.Currency)))
	}
	sb.WriteString("</table>")
	sb.WriteString("<p>退款将在数个工作日内原路退回。</p>")
	return subject, sb.String()
}
