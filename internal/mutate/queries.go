package mutate

// These strings are tree-sitter queries against the verilog grammar
// ir.VerilogLanguage parses with — the same grammar internal/ir's
// register scan uses. Queries containing a "%s" verb are templates:
// callers format in an identifier via fmt.Sprintf before compiling them.

const queryAllDeclaredIdentifiers = `
(list_of_port_declarations
    (ansi_port_declaration
        (port_identifier
            (simple_identifier) @identifier (#eq? @identifier "%[1]s")))) @declaration

(output_declaration
    (list_of_port_identifiers
        (port_identifier
            (simple_identifier) @identifier (#eq? @identifier "%[1]s")))) @declaration

(input_declaration
    (list_of_port_identifiers
        (port_identifier
            (simple_identifier) @identifier (#eq? @identifier "%[1]s")))) @declaration

(parameter_declaration
    (list_of_param_assignments
        (param_assignment
            (parameter_identifier
                (simple_identifier) @identifier (#eq? @identifier "%[1]s"))))) @declaration

(tf_item_declaration
    (tf_port_declaration
        (list_of_tf_variable_identifiers
            (port_identifier
                (simple_identifier) @identifier (#eq? @identifier "%[1]s"))))) @declaration

(net_declaration
    (list_of_net_decl_assignments
        (net_decl_assignment
            (simple_identifier) @identifier (#eq? @identifier "%[1]s")))) @declaration

(module_or_generate_item
    (package_or_generate_item_declaration
        (data_declaration
            (list_of_variable_decl_assignments
                (variable_decl_assignment
                    (simple_identifier) @identifier (#eq? @identifier "%[1]s")))) @declaration))
`

// NOTE: ports cannot be arrays in Verilog.
const queryAllNonArrayItemDeclarations = `
(module_declaration
    (module_or_generate_item
        (package_or_generate_item_declaration
            [(net_declaration
                (list_of_net_decl_assignments
                    (net_decl_assignment
                        (simple_identifier) @identifier (#not-match? @identifier "(clk|clock)")) @decl_assignment))
            (data_declaration
                (list_of_variable_decl_assignments
                    (variable_decl_assignment
                        (simple_identifier) @identifier (#not-match? @identifier "(clk|clock)")) @decl_assignment))])))
`

const queryAllReferences = `
(expression
    (primary
        (simple_identifier) @id-in-expr (#eq? @id-in-expr "%[1]s")))
(variable_lvalue
    (simple_identifier) @id-lhs (#eq? @id-lhs "%[1]s"))
(net_lvalue
    (simple_identifier) @id-lhs (#eq? @id-lhs "%[1]s"))
`

const queryAllIdentifiersInExpr = `
(expression
    (primary
        (simple_identifier) @identifier))
`

const queryAllIdentifiersWithoutSelect = `
(variable_lvalue
    (simple_identifier) @identifier .)
(net_lvalue
    (simple_identifier) @identifier .)
(expression
    (primary
        (simple_identifier) @identifier .))
`

const queryAllEscapedIdentifiers = `(escaped_identifier) @identifier`

const queryAllExpressions = `
((expression) @expr
    (#not-match? @expr "(clk|clock)"))
`

const queryRHSExpressions = `
(continuous_assign
    (list_of_net_assignments
        (net_assignment
            (expression) @expr)))
(nonblocking_assignment
    (expression) @expr)
`

const queryCANoSelectInLHS = `
(module_or_generate_item
    (continuous_assign
        (list_of_net_assignments .
            (net_assignment
                (net_lvalue
                    (simple_identifier) .) @lvalue
                (expression) @rvalue) .))) @assignment
`

const queryNBANoSelectInLHS = `
(statement_item
    (nonblocking_assignment
        (variable_lvalue
            (simple_identifier) .) @lvalue
        (expression) @rvalue)) @assignment
`

const queryAllStatementOrNull = `
(statement_or_null) @stmt
(function_statement_or_null) @stmt
`

const queryAllModuleDeclarations = `
(module_declaration
    (module_header
        (simple_identifier) @module_name)) @module
`

const queryAllModuleInstantiations = `
(module_instantiation
    (simple_identifier) @module_name (#eq? @module_name "%[1]s"))
`

const queryNonblockingAssignments = `
(statement_item
    (nonblocking_assignment)) @nba
`

const queryModuleOrGenerateItems = `
(module_or_generate_item
    [
        (continuous_assign)
        (always_construct)
    ]) @item
`

const queryCondStatement1 = `
(conditional_statement
    (cond_predicate) @cond .
    (statement_or_null) @stmt . ) @if
`

const queryCondStatement2 = `
(conditional_statement
    (cond_predicate) @cond
    (statement_or_null) @stmt
    "else"
    (statement_or_null) @stmt ) @if
`

const queryUnaryExpressions = `
(expression
    . (unary_operator) @uop) @expr
(constant_expression
    . (unary_operator) @uop) @expr
`

const queryBinaryExpressions = `
(expression
    [
        "**"
        "*" "/" "%"
        "+" "-"
        "<<" ">>" "<<<" ">>>"
        "<" "<=" ">" ">="
        "==" "!=" "===" "!=="
        "&"
        "^" "^~" "~^"
        "|"
        "&&"
        "||"
    ] @bop)
`

const priorityCoefficient = 100

var unaryOperators = []string{"+", "-", "!", "~", "&", "~&", "|", "~|", "^", "~^", "^~"}

var binaryOperators = []string{
	"**", "*", "/", "%", "+", "-", "<<", ">>", "<<<", ">>>", "<", "<=", ">", ">=",
	"==", "!=", "===", "!==", "&", "^", "^~", "~^", "|", "&&", "||",
}

const randomSelectionRate = 0.5

const verilogGenerateTemplate = `
generate
    for (%[1]s=0; %[1]s<1; %[1]s=%[1]s+1) begin
        %[2]s
    end
endgenerate
`

const verilogLoopTemplate = `
for (%[1]s=(%[2]s); %[1]s<=(%[3]s); %[1]s=%[1]s+1)
`

const verilogCondTemplate = `
if (%[1]s) begin
    %[2]s
end
`

const verilogFuncDeclTemplate = `
function %[1]s;
    %[2]s
    %[1]s = %[3]s;
endfunction
`
