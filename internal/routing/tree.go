package routing

import (
	"fmt"
	"strings"

	"github.com/crossbank/refunder/internal/domain"
	"github.com/crossbank/refunder/internal/fx"
	"github.com/crossbank/refunder/internal/reconciliation"
)

// Node identifies one decision point of the refund routing tree.
type Node string

const (
	NodeD1 Node = "D1" // foreign currency?
	NodeD2 Node = "D2" // nostro item found?
	NodeD3 Node = "D3" // refund to FCA?
	NodeD4 Node = "D4" // nostro item found after SCR wait?
	NodeD5 Node = "D5" // Markets? (FCA path)
	NodeD6 Node = "D6" // vostro debit authority granted?
	NodeD7 Node = "D7" // branch payment?
	NodeD8 Node = "D8" // Markets? (final)
	NodeD9 Node = "D9" // client has valid email?

	nodeDone Node = ""
)

// saitSuffix is the fixed tail appended to a 4-digit BSB to form a branch
// SAIT settlement account number.
const saitSuffix = "0001195062"

// RoutingError is fatal to the current case: a lookup the branch assumed
// would succeed came back empty. The caller forces MANUAL_REVIEW_REQUIRED
// and commits no operations.
type RoutingError struct {
	Node   Node
	Reason string
}

func (e *RoutingError) Error() string {
	return fmt.Sprintf("routing failed at %s: %s", e.Node, e.Reason)
}

// Directory is the account lookup capability the tree routes against.
type Directory interface {
	LookupByIBAN(iban string) (*domain.CustomerAccountRecord, error)
	FCAForHolder(holderName string) (*domain.CustomerAccountRecord, error)
	NostroForCurrency(currency string) (*domain.CustomerAccountRecord, error)
	VostroAccounts() ([]domain.CustomerAccountRecord, error)
	OperatingBank() (*domain.CustomerAccountRecord, error)
}

// Input carries everything a single traversal needs. Rematch re-queries the
// statement ledger for D4; it is the only way D4 can answer differently
// from D2.
type Input struct {
	Return   *domain.ParsedReturnMessage
	Original *domain.ParsedOriginalMessage
	Flags    domain.ChannelFlags
	Match    domain.MatchResult
	Rematch  func() (domain.MatchResult, error)
	CaseRef  string
}

// Result is the tree's output: operation intents in execution order, the
// notifications to hand to the comms collaborator, and the node-by-node
// trace. Disposition is AUTO_REFUND_PROCESSED only after the terminal
// submit-to-closed node.
type Result struct {
	Trace         []domain.NodeResult
	Operations    []domain.AccountOperation
	Notifications []domain.Notification
	Disposition   domain.Disposition
}

// Tree routes an eligible return through D1-D9.
type Tree struct {
	directory Directory
}

func NewTree(directory Directory) *Tree {
	return &Tree{directory: directory}
}

// Route walks the tree from D1 until a terminal node. Each visited node,
// including informational action nodes, appends one trace entry so the full
// path is reproducible from the trace alone.
func (t *Tree) Route(in *Input) (*Result, error) {
	r := &run{tree: t, in: in, match: in.Match, res: &Result{}}

	node := NodeD1
	for node != nodeDone {
		next, err := r.step(node)
		if err != nil {
			return r.res, err
		}
		node = next
	}
	return r.res, nil
}

// run is the mutable state of one traversal.
type run struct {
	tree    *Tree
	in      *Input
	match   domain.MatchResult
	res     *Result
	sndrRef string
}

func (r *run) decide(node Node, outcome bool, format string, args ...any) {
	r.res.Trace = append(r.res.Trace, domain.NodeResult{
		Node:      string(node),
		Outcome:   yesNo(outcome),
		Rationale: fmt.Sprintf(format, args...),
	})
}

func (r *run) action(name, format string, args ...any) {
	r.res.Trace = append(r.res.Trace, domain.NodeResult{
		Node:      name,
		Outcome:   domain.OutcomeNA,
		Rationale: fmt.Sprintf(format, args...),
	})
}

func (r *run) notify(template string) {
	r.res.Notifications = append(r.res.Notifications, domain.Notification{
		Template:  template,
		Reference: r.in.CaseRef,
	})
}

func (r *run) operate(opType domain.OperationType, acct *domain.CustomerAccountRecord, description string) {
	// Postings after an UPDATE_SNDR_REF node carry the updated sender
	// reference instead of the original end-to-end id.
	ref := r.in.Return.EndToEndID
	if r.sndrRef != "" {
		ref = r.sndrRef
	}
	r.res.Operations = append(r.res.Operations, domain.AccountOperation{
		Type:          opType,
		AccountNumber: acct.AccountNumber,
		AccountName:   acct.HolderName,
		AccountType:   acct.Type,
		Currency:      r.in.Return.ReturnedCurrency,
		Amount:        r.in.Return.ReturnedAmount,
		Reference:     ref,
		Description:   description,
	})
}

func (r *run) step(node Node) (Node, error) {
	switch node {
	case NodeD1:
		return r.d1()
	case NodeD2:
		return r.d2()
	case NodeD3:
		return r.d3()
	case NodeD4:
		return r.d4()
	case NodeD5:
		return r.d5()
	case NodeD6:
		return r.d6()
	case NodeD7:
		return r.d7()
	case NodeD8:
		return r.d8()
	case NodeD9:
		return r.d9()
	default:
		return nodeDone, &RoutingError{Node: node, Reason: "unknown node"}
	}
}

// D1: foreign currency? The settlement-copy/LC attachment is a no-op in the
// digital flow but stays in the trace.
func (r *run) d1() (Node, error) {
	foreign := r.in.Return.ReturnedCurrency != fx.ReferenceCurrency
	r.decide(NodeD1, foreign, "returned currency %s", r.in.Return.ReturnedCurrency)
	if foreign {
		r.action("ATTACH_SC_LC", "attached settlement copy / LC documentation")
		return NodeD2, nil
	}
	return NodeD6, nil
}

// D2: nostro item found?
func (r *run) d2() (Node, error) {
	r.decide(NodeD2, r.match.Found, "nostro match %s", r.match.Type)
	if r.match.Found {
		return NodeD3, nil
	}
	r.action("AWAITING_SCR", "nostro item not found; noted current date, awaiting SCR")
	return NodeD4, nil
}

// D3: refund to FCA?
func (r *run) d3() (Node, error) {
	fca, err := r.tree.directory.FCAForHolder(r.in.Original.DebtorName)
	if err != nil {
		return nodeDone, &RoutingError{Node: NodeD3, Reason: fmt.Sprintf("FCA lookup: %v", err)}
	}

	nostro, err := r.nostroAccount()
	if err != nil {
		return nodeDone, err
	}

	if fca != nil {
		r.decide(NodeD3, true, "FCA account %s held by %s", fca.AccountNumber, fca.HolderName)
		r.action("FCA_SAME_NAME", "verified FCA holder matches original debtor %s", r.in.Original.DebtorName)
		r.operate(domain.OpDebit, nostro, "return processing - nostro debit")
		r.operate(domain.OpCredit, fca, "return processing - FCA credit")
		r.updateSndrRef(r.in.Return.EndToEndID, "nostro reference")
		return NodeD5, nil
	}

	r.decide(NodeD3, false, "no FCA account for %s", r.in.Original.DebtorName)
	r.operate(domain.OpDebit, nostro, "return processing - nostro debit via payment input")
	r.updateSndrRef(r.in.Return.EndToEndID, "nostro reference")
	return NodeD7, nil
}

// D4: nostro item found after the SCR wait? The ledger is re-queried; when
// the item still has not arrived, funds come out of the operating bank
// account instead and the correspondent is chased.
func (r *run) d4() (Node, error) {
	rematch, err := r.in.Rematch()
	if err != nil {
		return nodeDone, &RoutingError{Node: NodeD4, Reason: fmt.Sprintf("statement re-query: %v", err)}
	}
	r.match = rematch

	r.decide(NodeD4, rematch.Found, "nostro match %s after SCR wait", rematch.Type)
	if rematch.Found {
		r.action("ATTACH_SC_LC", "attached settlement copy / LC documentation")
		return NodeD3, nil
	}

	r.notify(domain.TemplateNostroNotCredited)
	r.action("SEND_NOSTRO_NOT_CREDITED", "sent nostro-not-credited notice to correspondent")
	if err := r.debitOperatingBank(NodeD4); err != nil {
		return nodeDone, err
	}
	return NodeD7, nil
}

// D5: Markets? (FCA path). Both answers continue to D8.
func (r *run) d5() (Node, error) {
	r.decide(NodeD5, r.in.Flags.IsMarkets, "markets flag on FCA refund path")
	if r.in.Flags.IsMarkets {
		r.notify(domain.TemplateRefundFCAEmail)
	} else {
		r.notify(domain.TemplateRefundDailyList)
	}
	return NodeD8, nil
}

// D6: vostro bank granted debit authority?
func (r *run) d6() (Node, error) {
	vostros, err := r.tree.directory.VostroAccounts()
	if err != nil {
		return nodeDone, &RoutingError{Node: NodeD6, Reason: fmt.Sprintf("vostro lookup: %v", err)}
	}

	check := reconciliation.CheckDebitAuthority(r.in.Return.CreditorAgentBIC, r.in.Return.ReturnedCurrency, vostros)
	r.decide(NodeD6, check.Exists, "debit authority %s for BIC %s", check.AuthorityType, r.in.Return.CreditorAgentBIC)

	if check.Exists {
		r.operate(domain.OpDebit, check.Account, "return processing - vostro debit")
		// Sender reference is the vostro bank's own case reference.
		r.updateSndrRef(r.in.Return.EndToEndID, "vostro bank case reference")
		return NodeD7, nil
	}

	if err := r.debitOperatingBank(NodeD6); err != nil {
		return nodeDone, err
	}
	return NodeD7, nil
}

// D7: branch payment? Branch refunds settle to a SAIT account derived from
// the BSB; client refunds go back to the originally debited account.
func (r *run) d7() (Node, error) {
	r.decide(NodeD7, r.in.Flags.IsBranchPayment, "branch payment flag")

	if r.in.Flags.IsBranchPayment {
		bsb, err := bsbFromAccount(r.in.Original.DebtorIBAN)
		if err != nil {
			return nodeDone, &RoutingError{Node: NodeD7, Reason: err.Error()}
		}
		sait := &domain.CustomerAccountRecord{
			AccountNumber: bsb + saitSuffix,
			HolderName:    "Branch SAIT " + bsb,
			Type:          domain.AccountBranch,
			Currency:      r.in.Return.ReturnedCurrency,
		}
		r.operate(domain.OpCredit, sait, "return processing - branch SAIT credit")
		return NodeD8, nil
	}

	client, err := r.tree.directory.LookupByIBAN(r.in.Original.DebtorIBAN)
	if err != nil {
		return nodeDone, &RoutingError{Node: NodeD7, Reason: fmt.Sprintf("client lookup: %v", err)}
	}
	if client == nil {
		return nodeDone, &RoutingError{Node: NodeD7, Reason: "original debited account " + r.in.Original.DebtorIBAN + " not found"}
	}
	r.operate(domain.OpCredit, client, "return processing - credit client original account")
	return NodeD8, nil
}

// D8: Markets? (final).
func (r *run) d8() (Node, error) {
	r.decide(NodeD8, r.in.Flags.IsMarkets, "markets flag at final notification")
	if r.in.Flags.IsMarkets {
		r.notify(domain.TemplateRefundSent)
		r.close()
		return nodeDone, nil
	}
	return NodeD9, nil
}

// D9: client has a valid email address?
func (r *run) d9() (Node, error) {
	r.decide(NodeD9, r.in.Flags.HasValidClientEmail, "client email validity")
	if r.in.Flags.HasValidClientEmail {
		r.notify(domain.TemplateRefundDailyList)
	} else {
		r.notify(domain.TemplateClientAdHoc)
		r.notify(domain.TemplateNoEmailFullList)
	}
	r.close()
	return nodeDone, nil
}

// close appends the terminal bookkeeping nodes and marks the disposition.
func (r *run) close() {
	r.action("UPDATE_QF", "updated QF screen per SOP")
	r.action("SUBMIT_CASE_TO_CLOSED", "case submitted to closed")
	r.res.Disposition = domain.DispositionAutoRefund
}

func (r *run) updateSndrRef(ref, source string) {
	r.sndrRef = ref
	r.action("UPDATE_SNDR_REF", "sender reference %s (%s)", ref, source)
}

// debitOperatingBank is the shared OB fallback used when neither a nostro
// credit nor vostro authority covers the return. The sender reference is the
// case reference with letters stripped.
func (r *run) debitOperatingBank(at Node) error {
	ob, err := r.tree.directory.OperatingBank()
	if err != nil {
		return &RoutingError{Node: at, Reason: fmt.Sprintf("operating bank lookup: %v", err)}
	}
	if ob == nil {
		return &RoutingError{Node: at, Reason: "operating bank account not found"}
	}
	r.action("FUNDS_IN_OB", "operating bank funds check on %s", ob.AccountNumber)
	r.updateSndrRef(digitsOnly(r.in.CaseRef), "case reference, no-letter variant")
	r.operate(domain.OpDebit, ob, "return processing - operating bank debit")
	return nil
}

func (r *run) nostroAccount() (*domain.CustomerAccountRecord, error) {
	nostro, err := r.tree.directory.NostroForCurrency(r.in.Return.ReturnedCurrency)
	if err != nil {
		return nil, &RoutingError{Node: NodeD3, Reason: fmt.Sprintf("nostro lookup: %v", err)}
	}
	if nostro == nil {
		return nil, &RoutingError{Node: NodeD3, Reason: "no nostro account for currency " + r.in.Return.ReturnedCurrency}
	}
	return nostro, nil
}

// bsbFromAccount takes the leading 4 digits of the original debited account
// as the branch BSB.
func bsbFromAccount(account string) (string, error) {
	digits := digitsOnly(account)
	if len(digits) < 4 {
		return "", fmt.Errorf("cannot derive BSB from account %q", account)
	}
	return digits[:4], nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func yesNo(v bool) domain.Outcome {
	if v {
		return domain.OutcomeYes
	}
	return domain.OutcomeNo
}
